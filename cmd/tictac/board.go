package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gorgonia/tictac/game"
	"github.com/muesli/termenv"
)

// printer writes coloured boards to a terminal.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer) printer { return printer{out: termenv.NewOutput(w)} }

func (p printer) mark(m game.Mark, last bool) string {
	s := p.out.String(fmt.Sprintf("%s", m))
	switch m {
	case game.X:
		s = s.Foreground(p.out.Color("1"))
	case game.O:
		s = s.Foreground(p.out.Color("4"))
	default:
		s = s.Faint()
	}
	if last {
		s = s.Bold().Underline()
	}
	return s.String()
}

// board renders cells, highlighting the cell at last. last may be -1.
func (p printer) board(cells [game.Cells]game.Mark, last int) string {
	var buf strings.Builder
	for i, m := range cells {
		if i%3 == 0 {
			buf.WriteString("⎢ ")
		}
		buf.WriteString(p.mark(m, i == last))
		buf.WriteByte(' ')
		if (i+1)%3 == 0 {
			buf.WriteString("⎥\n")
		}
	}
	return buf.String()
}

func (p printer) result(r game.Result) string {
	switch r {
	case game.XWins:
		return p.out.String("X wins").Foreground(p.out.Color("1")).Bold().String()
	case game.OWins:
		return p.out.String("O wins").Foreground(p.out.Color("4")).Bold().String()
	case game.Draw:
		return p.out.String("Draw").Bold().String()
	}
	return "In progress"
}

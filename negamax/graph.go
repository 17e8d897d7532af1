package negamax

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/pkg/errors"
)

type scoredNode struct {
	ID     string
	Move   int
	Player game.Side
	Score  int
	board  [game.Cells]game.Mark
}

func (s *scoredNode) State() string {
	var buf bytes.Buffer
	for i, c := range s.board {
		if i%3 == 0 {
			fmt.Fprint(&buf, "⎢ ")
		}
		fmt.Fprintf(&buf, "%s ", c)
		if (i+1)%3 == 0 {
			fmt.Fprint(&buf, "⎥<BR />")
		}
	}
	return buf.String()
}

// ToDot renders the position and every legal reply for side, scored by Search, as a graphviz digraph.
// Child scores are from side's perspective.
func ToDot(b *ttt.Board, side game.Side) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}

	root := &scoredNode{ID: "root", Move: -1, Player: side, board: b.State()}
	if err := addNode(g, root); err != nil {
		return "", err
	}

	if b.Result().Ended() {
		return g.String(), nil
	}

	work := b.Clone()
	for _, i := range work.Empty() {
		work.Place(side, i)
		var score int
		switch work.Check() {
		case game.Winner(side):
			score = Win
		case game.Draw:
			score = 0
		default:
			score = -Search(work, game.Opponent(side)).Score
		}
		child := &scoredNode{
			ID:     fmt.Sprintf("m%d", i),
			Move:   i,
			Player: side,
			Score:  score,
			board:  work.State(),
		}
		work.Unplace(i)

		if err := addNode(g, child); err != nil {
			return "", err
		}
		if err := g.AddEdge(root.ID, child.ID, true, nil); err != nil {
			return "", errors.WithStack(err)
		}
	}
	return g.String(), nil
}

func addNode(g *gographviz.Graph, n *scoredNode) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return errors.Wrapf(err, "unable to render node %v", n.ID)
	}
	attrs := map[string]string{
		"fontname": "Monaco",
		"shape":    "none",
		"label":    buf.String(),
	}
	return errors.WithStack(g.AddNode("G", n.ID, attrs))
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Move</TD><TD>{{.Move}}</TD></TR>
<TR><TD>Player</TD><TD>{{printf "%v" .Player}}</TD></TR>
<TR><TD>Score</TD><TD>{{.Score}}</TD></TR>
<TR><TD>State</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}

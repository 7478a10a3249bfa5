package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive edge browser.
func (c *CLI) browseCommand() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "browse <result>",
		Short: "Browse the edges of a result and the threads through them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var corpus *item.Corpus
			if src.count() > 0 {
				if corpus, err = c.loadCorpus(cmd.Context(), src); err != nil {
					return err
				}
			}
			if len(res.Edges()) == 0 {
				printWarning("The tree of item %d has no edges", res.Anchor)
				return nil
			}
			_, err = tea.NewProgram(NewEdgeBrowserModel(res, corpus), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	src.register(cmd)
	return cmd
}

// =============================================================================
// EdgeBrowserModel - Interactive edge query
// =============================================================================

// threadsMsg carries the answer to an edge query.
type threadsMsg struct {
	edge    tree.EdgeKey
	threads []dag.Thread
	err     error
}

// EdgeBrowserModel is the bubbletea model listing the tree edges of a
// result. Selecting an edge runs the thread query on it.
type EdgeBrowserModel struct {
	Result *narrative.Result
	Edges  []tree.EdgeKey
	Cursor int
	Height int
	Offset int

	// Answer to the last query.
	Queried *tree.EdgeKey
	Threads []dag.Thread
	Err     error

	corpus *item.Corpus
}

// NewEdgeBrowserModel creates a browser over the edges of r. corpus is
// optional and only used to show item texts.
func NewEdgeBrowserModel(r *narrative.Result, corpus *item.Corpus) EdgeBrowserModel {
	return EdgeBrowserModel{
		Result: r,
		Edges:  r.Edges(),
		Height: 15,
		corpus: corpus,
	}
}

func (m EdgeBrowserModel) Init() tea.Cmd {
	return nil
}

// queryEdge runs the thread query off the update loop.
func (m EdgeBrowserModel) queryEdge(edge tree.EdgeKey) tea.Cmd {
	r := m.Result
	return func() tea.Msg {
		threads, err := r.ThreadsThrough(edge)
		return threadsMsg{edge: edge, threads: threads, err: err}
	}
}

func (m EdgeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Edges)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Edges) == 0 {
				return m, nil
			}
			return m, m.queryEdge(m.Edges[m.Cursor])
		}
	case threadsMsg:
		edge := msg.edge
		m.Queried = &edge
		m.Threads = msg.threads
		m.Err = msg.err
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EdgeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Threads around item %d", m.Result.Anchor)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ query  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Edges) {
		end = len(m.Edges)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Edges[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, e.String(), m.side(e)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Edge", "Side").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	edgesView := t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Edges)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, edgesView, "  ", m.threadsView()))
	b.WriteString("\n")
	return b.String()
}

// side tells on which side of the anchor an edge lies.
func (m EdgeBrowserModel) side(e tree.EdgeKey) string {
	if e.From < m.Result.Anchor {
		return "before"
	}
	return "after"
}

func (m EdgeBrowserModel) threadsView() string {
	var b strings.Builder
	if m.Queried == nil {
		b.WriteString(listDimStyle.Render("Select an edge to list its threads"))
		return b.String()
	}

	b.WriteString(StyleHighlight.Render("Through " + m.Queried.String()))
	b.WriteString("\n\n")
	switch {
	case m.Err != nil:
		b.WriteString(StyleWarning.Render(errs.UserMessage(m.Err)))
	case len(m.Threads) == 0:
		b.WriteString(listDimStyle.Render("no threads"))
	default:
		for i, th := range m.Threads {
			b.WriteString(fmt.Sprintf("%s %s\n", listDimStyle.Render(fmt.Sprintf("%2d.", i+1)), formatThread(th)))
			if m.corpus != nil {
				for _, id := range th {
					if it, ok := m.corpus.Item(id); ok {
						b.WriteString(listDimStyle.Render(fmt.Sprintf("     %d  %s", id, truncate(it.Text, 56))))
						b.WriteString("\n")
					}
				}
			}
		}
	}
	return b.String()
}

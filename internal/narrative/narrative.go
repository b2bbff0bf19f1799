// Package narrative extracts the tables, figures and tumour mutational
// burden from the supplementary HTML report.
package narrative

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TMBLabel is the text that introduces the tumour mutational burden value.
const TMBLabel = "Total number of somatic non-synonymous small variants per megabase"

// Table is one HTML table: the first row's cells are the headers.
type Table struct {
	Name    string // known section name, or "Table N"
	Headers []string
	Rows    [][]string
}

// Block is everything taken from the narrative document.
type Block struct {
	Tables []Table
	Images []string // img src values in document order
	TMB    string
}

// Section describes a table the report knows how to name.
type Section struct {
	Name            string
	ExpectedHeaders []string
	// Alternatives maps an expected header to other spellings accepted in
	// its place.
	Alternatives map[string][]string
}

// Sections are matched in order; each names at most one table.
var Sections = []Section{
	{Name: "Patient info", ExpectedHeaders: []string{"Clinical Indication"}},
	{Name: "Tumour info", ExpectedHeaders: []string{
		"Tumour Diagnosis Date",
		"Histopathology or SIHMDS LAB ID",
		"Presentation",
		"Primary or Metastatic",
		"Tumour Topography",
	}},
	{Name: "Sample info", ExpectedHeaders: []string{
		"Clinical Sample Date Time",
		"Storage Medium",
		"Source",
		"Tumour Content",
		"Calculated Tumour Content",
		"Calculated Overall Ploidy",
	}},
	{Name: "Germline info", ExpectedHeaders: []string{"Storage Medium", "Source"}},
	{Name: "Sequencing info", ExpectedHeaders: []string{
		"Total somatic SNVs",
		"Total somatic indels",
		"Total somatic SVs",
		"Sample type",
		"Genome-wide coverage mean, x",
		"Mapped reads, %",
		"Chimeric DNA fragments, %",
		"Insert size median, bp",
		"Unevenness of local genome coverage, x",
	}, Alternatives: map[string][]string{
		"Unevenness of local genome coverage, x": {"Genome coverage evenness"},
	}},
}

// Load parses the HTML file at path.
func Load(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open narrative: %w", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse narrative %s: %w", path, err)
	}
	return b, nil
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	b := &Block{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				// Keep walking: tables also hold figures and the TMB line.
				b.Tables = append(b.Tables, readTable(n))
			case atom.Img:
				if src := attr(n, "src"); src != "" {
					b.Images = append(b.Images, src)
				}
			case atom.B, atom.Strong:
				if b.TMB == "" && strings.Contains(collapse(text(n)), TMBLabel) {
					b.TMB = siblingText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	nameTables(b.Tables)
	return b, nil
}

// nameTables assigns each known section to the first unnamed table whose
// headers include every expected header.
func nameTables(tables []Table) {
	for _, s := range Sections {
		for i := range tables {
			if tables[i].Name == "" && s.matches(tables[i].Headers) {
				tables[i].Name = s.Name
				break
			}
		}
	}
	for i := range tables {
		if tables[i].Name == "" {
			tables[i].Name = "Table " + strconv.Itoa(i+1)
		}
	}
}

func (s Section) matches(headers []string) bool {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[strings.ToLower(h)] = true
	}
	for _, want := range s.ExpectedHeaders {
		if have[strings.ToLower(want)] {
			continue
		}
		found := false
		for _, alt := range s.Alternatives[want] {
			if have[strings.ToLower(alt)] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func readTable(n *html.Node) Table {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Th || c.DataAtom == atom.Td) {
					cells = append(cells, collapse(text(c)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var t Table
	if len(rows) == 0 {
		return t
	}
	// The first row is the header whether it uses <th> or <td> cells.
	t.Headers, t.Rows = rows[0], rows[1:]
	return t
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// siblingText returns the first non-empty text after n, without a leading
// colon. When n ends its parent, as a label alone in a table cell does, the
// search moves on to the parent's siblings, stopping at the enclosing table.
func siblingText(n *html.Node) string {
	for ; n != nil && n.DataAtom != atom.Table && n.DataAtom != atom.Body; n = n.Parent {
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if t := strings.TrimLeft(collapse(text(s)), ": "); t != "" {
				return strings.TrimSpace(t)
			}
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package visualization

import (
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
)

const labelRunes = 30

func CategoryNodeID(name string) string { return "category:" + name }
func DocumentNodeID(id string) string   { return "document:" + id }
func TagNodeID(name string) string      { return "tag:" + name }

// BuildGraph derives the category/document/tag graph from docs. Nodes are
// ordered categories, documents, tags, each in order of first appearance,
// so the same input always yields the same IDs and edges.
func BuildGraph(docs []documents.Document) *Graph {
	var categories, docNodes, tags []*Node
	var catEdges, tagEdges []Edge
	seen := make(map[string]bool)

	for i := range docs {
		doc := docs[i].Clone()
		docID := DocumentNodeID(doc.ID)
		if seen[docID] {
			continue
		}
		seen[docID] = true

		catID := CategoryNodeID(doc.Category)
		if !seen[catID] {
			seen[catID] = true
			categories = append(categories, newNode(catID, KindCategory, doc.Category))
		}

		n := newNode(docID, KindDocument, truncateLabel(doc.Text))
		n.Document = &doc
		docNodes = append(docNodes, n)
		catEdges = append(catEdges, Edge{Kind: EdgeCategoryDocument, Source: catID, Target: docID})

		linked := make(map[string]bool, len(doc.Tags))
		for _, tag := range doc.Tags {
			tagID := TagNodeID(tag)
			if linked[tagID] {
				continue
			}
			linked[tagID] = true
			if !seen[tagID] {
				seen[tagID] = true
				tags = append(tags, newNode(tagID, KindTag, tag))
			}
			tagEdges = append(tagEdges, Edge{Kind: EdgeDocumentTag, Source: docID, Target: tagID})
		}
	}

	nodes := make([]*Node, 0, len(categories)+len(docNodes)+len(tags))
	nodes = append(nodes, categories...)
	nodes = append(nodes, docNodes...)
	nodes = append(nodes, tags...)

	g, err := NewGraph(nodes, append(catEdges, tagEdges...))
	if err != nil {
		// Every endpoint above was created alongside its edge
		panic(err)
	}
	return g
}

func newNode(id string, kind NodeKind, label string) *Node {
	return &Node{ID: id, Kind: kind, Label: label, Radius: kind.Radius()}
}

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= labelRunes {
		return s
	}
	return string(r[:labelRunes]) + "..."
}

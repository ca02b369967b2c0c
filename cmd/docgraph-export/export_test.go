package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-docgraph/pkg/config"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

func testOptions() exportOptions {
	return exportOptions{
		Layout:   visualization.DefaultLayoutConfig(visualization.Viewport{Width: 800, Height: 600}),
		MaxTicks: 3000,
		Logger:   logging.NopLogger{},
	}
}

func sampleDocs() []documents.Document {
	return []documents.Document{
		{ID: "doc_1", Text: "Quarterly revenue", Category: "Finance", Tags: []string{"Draft"}},
		{ID: "doc_2", Text: "Vendor contract", Category: "Legal", Tags: []string{"Draft", "Urgent"}},
	}
}

func TestExportSettlesAndWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	res, err := export(sampleDocs(), testOptions(), &buf)
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.Equal(t, 6, res.Nodes)
	assert.Less(t, res.Ticks, 3000)

	var l visualization.Layout
	require.NoError(t, json.Unmarshal(buf.Bytes(), &l))
	assert.Len(t, l.Edges, 5)
	for _, n := range l.Nodes {
		assert.GreaterOrEqual(t, n.X, n.Radius, n.ID)
		assert.LessOrEqual(t, n.X, l.Viewport.Width-n.Radius, n.ID)
	}
}

func TestExportCompressed(t *testing.T) {
	var buf bytes.Buffer
	_, err := export(sampleDocs(), exportOptions{
		Layout:   testOptions().Layout,
		MaxTicks: 3000,
		Compress: true,
	}, &buf)
	require.NoError(t, err)

	l, err := visualization.ReadLayout(&buf, true)
	require.NoError(t, err)
	_, ok := l.Position("category:Legal")
	assert.True(t, ok)
}

func TestExportTickLimit(t *testing.T) {
	opts := testOptions()
	opts.MaxTicks = 5

	var buf bytes.Buffer
	res, err := export(sampleDocs(), opts, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Ticks)
	assert.False(t, res.Settled)
}

func TestExportPreview(t *testing.T) {
	opts := testOptions()
	opts.Preview = true

	var buf bytes.Buffer
	res, err := export(sampleDocs(), opts, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(res.Preview, "◉"))
}

func TestExportEmptyViewport(t *testing.T) {
	opts := testOptions()
	opts.Layout.Viewport = visualization.Viewport{}

	_, err := export(sampleDocs(), opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, visualization.ErrEmptyViewport)
}

func TestLoadDocumentsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	data, err := json.Marshal(sampleDocs())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	docs, err := loadDocuments(path, config.StoreConfig{})
	require.NoError(t, err)
	assert.Equal(t, sampleDocs(), docs)
}

func TestLoadDocumentsSeeded(t *testing.T) {
	store := config.StoreConfig{SeedDocuments: 7, RandomSeed: 42}
	a, err := loadDocuments("", store)
	require.NoError(t, err)
	b, err := loadDocuments("", store)
	require.NoError(t, err)

	require.Len(t, a, 7)
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
		assert.Equal(t, a[i].Tags, b[i].Tags)
	}
}

func TestLoadDocumentsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := loadDocuments(path, config.StoreConfig{})
	assert.Error(t, err)

	_, err = loadDocuments(filepath.Join(t.TempDir(), "missing.json"), config.StoreConfig{})
	assert.Error(t, err)
}

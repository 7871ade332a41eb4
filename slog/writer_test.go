package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/mock"
	snipslog "github.com/fwojciec/snipminer/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSnippetWriter_WriteSnippets(t *testing.T) {
	t.Parallel()

	t.Run("logs sink and count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var got []*snipminer.CodeSnippet
		inner := &mock.SnippetWriter{
			WriteSnippetsFn: func(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
				got = snippets
				return nil
			},
		}
		snippets := []*snipminer.CodeSnippet{{SnippetID: "so_1"}, {SnippetID: "so_2"}}

		w := snipslog.NewLoggingSnippetWriter(inner, "sqlite", slog.New(slog.NewTextHandler(&buf, nil)))
		err := w.WriteSnippets(context.Background(), snippets)

		require.NoError(t, err)
		assert.Equal(t, snippets, got)
		output := buf.String()
		assert.Contains(t, output, "write snippets")
		assert.Contains(t, output, "sink=sqlite")
		assert.Contains(t, output, "count=2")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnippetWriter{
			WriteSnippetsFn: func(context.Context, []*snipminer.CodeSnippet) error {
				return errors.New("disk full")
			},
		}

		w := snipslog.NewLoggingSnippetWriter(inner, "json", slog.New(slog.NewTextHandler(&buf, nil)))
		err := w.WriteSnippets(context.Background(), nil)

		require.EqualError(t, err, "disk full")
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}

func TestLoggingGistWriter_WriteGists(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.GistWriter{
		WriteGistsFn: func(context.Context, []*snipminer.Gist) error { return nil },
	}

	w := snipslog.NewLoggingGistWriter(inner, "amqp", slog.New(slog.NewTextHandler(&buf, nil)))
	err := w.WriteGists(context.Background(), []*snipminer.Gist{{ID: "g"}})

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "write gists")
	assert.Contains(t, output, "sink=amqp")
	assert.Contains(t, output, "count=1")
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"image-converter/internal/domain/entities"
	apperrors "image-converter/pkg/errors"
)

// fakeTransformer writes a small file per call and fails for names containing "bad".
type fakeTransformer struct {
	mu       sync.Mutex
	calls    []int
	onCall   func(index int)
	panicOn  int
	panicSet bool
}

func (f *fakeTransformer) Transform(inputPath, outputPath string, _ entities.Settings, index int) (*entities.TransformOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, index)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(index)
	}
	if f.panicSet && index == f.panicOn {
		panic("decoder exploded")
	}
	if strings.Contains(inputPath, "bad") {
		return nil, apperrors.ErrProcessing(errors.New("corrupt"))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, []byte("out"), 0o644); err != nil {
		return nil, err
	}
	return &entities.TransformOutput{OriginalSize: 10, ProcessedSize: 3, Width: 1, Height: 1}, nil
}

func (f *fakeTransformer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makeFiles(names ...string) []entities.FileDescriptor {
	files := make([]entities.FileDescriptor, len(names))
	for i, n := range names {
		files[i] = entities.FileDescriptor{Path: "/in/" + n, OriginalName: n}
	}
	return files
}

func numbered() entities.Settings {
	return entities.Settings{
		Format: entities.FormatWebP,
		Naming: entities.NamingSettings{Type: entities.NamingNumbered, Prefix: "img", Start: 1},
	}
}

func TestBatchRunner_RunContinuesPastFailures(t *testing.T) {
	runner := NewBatchRunner(&fakeTransformer{}, 1, zaptest.NewLogger(t))
	var snaps []entities.Progress

	results, err := runner.Run(context.Background(), makeFiles("a.png", "bad.png", "c.png"), numbered(), t.TempDir(), func(p entities.Progress) {
		snaps = append(snaps, p)
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "img002.webp", results[1].OutputName)
	assert.Contains(t, results[1].Error, "corrupt")
	assert.Empty(t, results[1].OutputPath)
	assert.True(t, results[2].Success)

	require.Len(t, snaps, 3)
	for i, s := range snaps {
		assert.Equal(t, i+1, s.Processed)
		assert.Equal(t, 3, s.Total)
		assert.Positive(t, s.Speed)
	}
	assert.Equal(t, 100, snaps[2].Percentage)
	assert.Zero(t, snaps[2].ETA)
}

func TestBatchRunner_ConcurrentProgressIsMonotonic(t *testing.T) {
	runner := NewBatchRunner(&fakeTransformer{}, 4, zaptest.NewLogger(t))

	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("f%02d.png", i)
	}

	last := 0
	results, err := runner.Run(context.Background(), makeFiles(names...), numbered(), t.TempDir(), func(p entities.Progress) {
		assert.Equal(t, last+1, p.Processed)
		last = p.Processed
	})
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, names[i], r.OriginalName, "results keep input order")
	}
}

func TestBatchRunner_CancelStopsBeforeNextFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ft := &fakeTransformer{}
	runner := NewBatchRunner(ft, 1, zaptest.NewLogger(t))

	results, err := runner.Run(ctx, makeFiles("a.png", "b.png", "c.png", "d.png", "e.png"), numbered(), t.TempDir(), func(p entities.Progress) {
		if p.Processed == 1 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, ft.callCount())
}

func TestBatchRunner_PanicBecomesCrash(t *testing.T) {
	ft := &fakeTransformer{panicSet: true, panicOn: 1}
	runner := NewBatchRunner(ft, 1, zaptest.NewLogger(t))

	results, err := runner.Run(context.Background(), makeFiles("a.png", "b.png", "c.png"), numbered(), t.TempDir(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCrash))
	assert.Len(t, results, 1)
}

func TestSnapshot(t *testing.T) {
	zero := snapshot(0, 4, 0)
	assert.Zero(t, zero.Speed)
	assert.Zero(t, zero.ETA)

	s := snapshot(2, 4, 4e9)
	assert.Equal(t, 50, s.Percentage)
	assert.InDelta(t, 0.5, s.Speed, 1e-9)
	assert.InDelta(t, 4.0, s.ETA, 1e-9)
}

package whisper

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWhisper 模擬 whisper CLI：--help 成功，轉錄時寫出 JSON
type fakeWhisper struct {
	output  string
	helpErr error
	runErr  error
	calls   [][]string
}

func (f *fakeWhisper) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) == 1 && args[0] == "--help" {
		return []byte("usage: whisper"), nil, f.helpErr
	}
	if f.runErr != nil {
		return nil, []byte("RuntimeError"), f.runErr
	}
	var outDir string
	for i, a := range args {
		if a == "--output_dir" {
			outDir = args[i+1]
		}
	}
	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	if err := os.WriteFile(filepath.Join(outDir, base+".json"), []byte(f.output), 0o644); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func writeVideo(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(p, []byte("fake"), 0o644))
	return p
}

func TestNewTranscriberValidatesModelSize(t *testing.T) {
	_, err := NewTranscriber(context.Background(), config.TranscriberConfig{ModelSize: "huge"}, logger.NewNop(), WithRunner(&fakeWhisper{}))
	assert.ErrorIs(t, err, ErrInvalidModelSize)

	for _, size := range ModelSizes {
		tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{ModelSize: size}, logger.NewNop(), WithRunner(&fakeWhisper{}))
		require.NoError(t, err)
		assert.Equal(t, size, tr.ModelSize())
	}

	tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{}, nil, WithRunner(&fakeWhisper{}))
	require.NoError(t, err)
	assert.Equal(t, "base", tr.ModelSize())
}

func TestNewTranscriberFailsWhenBinaryMissing(t *testing.T) {
	_, err := NewTranscriber(context.Background(), config.TranscriberConfig{}, logger.NewNop(), WithRunner(&fakeWhisper{helpErr: errors.New("not found")}))
	assert.Error(t, err)
}

func TestTranscribeVideoMissingFile(t *testing.T) {
	fw := &fakeWhisper{}
	tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{}, logger.NewNop(), WithRunner(fw))
	require.NoError(t, err)

	_, err = tr.TranscribeVideo(context.Background(), "/nonexistent/clip.mp4", "fr")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Len(t, fw.calls, 1, "轉錄前就應失敗，不呼叫模型")
}

func TestTranscribeVideo(t *testing.T) {
	fw := &fakeWhisper{output: `{"text":" Bonjour à tous.","segments":[{"id":0,"seek":0,"start":0.0,"end":2.5,"text":" Bonjour"},{"id":1,"seek":0,"start":2.5,"end":4.0,"text":" à tous."}],"language":"fr"}`}
	tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{ModelSize: "small"}, logger.NewNop(), WithRunner(fw))
	require.NoError(t, err)

	path := writeVideo(t)
	res, err := tr.TranscribeVideo(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, " Bonjour à tous.", res.Text)
	require.Len(t, res.Segments, 2)
	assert.Equal(t, " à tous.", res.Segments[1].Text)
	assert.Equal(t, "fr", res.Language)
	assert.InDelta(t, 4.0, res.Duration, 1e-9)

	args := fw.calls[1]
	assert.Equal(t, path, args[1])
	assert.Contains(t, strings.Join(args, " "), "--model small --language fr --task transcribe")
}

func TestTranscribeAudioAlias(t *testing.T) {
	fw := &fakeWhisper{output: `{"text":"hello","segments":[],"language":"en","duration":1.5}`}
	tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{}, logger.NewNop(), WithRunner(fw))
	require.NoError(t, err)

	res, err := tr.TranscribeAudio(context.Background(), writeVideo(t), "en")
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)
	assert.InDelta(t, 1.5, res.Duration, 1e-9)
	assert.NotNil(t, res.Segments)
}

func TestTranscribeVideoModelFailure(t *testing.T) {
	fw := &fakeWhisper{runErr: errors.New("exit status 1")}
	tr, err := NewTranscriber(context.Background(), config.TranscriberConfig{}, logger.NewNop(), WithRunner(fw))
	require.NoError(t, err)

	_, err = tr.TranscribeVideo(context.Background(), writeVideo(t), "fr")
	assert.Error(t, err)
}

func TestParseOutputInvalid(t *testing.T) {
	_, err := parseOutput([]byte("{"), "fr")
	assert.Error(t, err)
}

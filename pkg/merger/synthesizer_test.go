package merger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpzouying/clipkit/pkg/theme"
	"github.com/xpzouying/clipkit/pkg/titlecard"
)

func renderTestFrame(t *testing.T, n int, final bool) *titlecard.Frame {
	t.Helper()
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	r := titlecard.NewRenderer(titlecard.NewFontLoader(nil, entry), entry)
	f, err := r.Render(titlecard.Request{Number: n, Final: final, Width: 90, Height: 160, Theme: theme.Default()})
	require.NoError(t, err)
	return f
}

func TestSynthesizeWithCue(t *testing.T) {
	work := t.TempDir()
	codec := &fakeCodec{}
	logger, hook := test.NewNullLogger()
	s := NewSynthesizer(codec, testMergeConfig(writeSoundDir(t)).Sound, logrus.NewEntry(logger))

	clip, err := s.Synthesize(context.Background(), renderTestFrame(t, 2, false), 0.5, false, work)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(work, "transition_2.mp4"), clip.Path)
	assert.False(t, clip.Silent)
	assert.FileExists(t, clip.Path)
	assert.NoFileExists(t, clip.FramePath)
	assert.Empty(t, hook.AllEntries())
}

func TestSynthesizeMissingCueIsSilent(t *testing.T) {
	work := t.TempDir()
	codec := &fakeCodec{}
	logger, hook := test.NewNullLogger()
	s := NewSynthesizer(codec, testMergeConfig(t.TempDir()).Sound, logrus.NewEntry(logger))

	clip, err := s.Synthesize(context.Background(), renderTestFrame(t, 3, true), 2.0, true, work)
	require.NoError(t, err)

	assert.True(t, clip.Silent)
	assert.True(t, clip.Final)
	assert.Equal(t, "transition_final.mp4", filepath.Base(clip.Path))
	require.Len(t, codec.stills, 1)
	assert.Empty(t, codec.stills[0].AudioPath)
	assert.InDelta(t, 2.0, codec.stills[0].Duration, 1e-9)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSynthesizeUnusableCueRetriesSilent(t *testing.T) {
	work := t.TempDir()
	codec := &fakeCodec{failAudio: true}
	logger, _ := test.NewNullLogger()
	s := NewSynthesizer(codec, testMergeConfig(writeSoundDir(t)).Sound, logrus.NewEntry(logger))

	clip, err := s.Synthesize(context.Background(), renderTestFrame(t, 1, false), 0.5, false, work)
	require.NoError(t, err)
	assert.True(t, clip.Silent)
	require.Len(t, codec.stills, 2)
	assert.NotEmpty(t, codec.stills[0].AudioPath)
	assert.Empty(t, codec.stills[1].AudioPath)
}

func TestSynthesizeUnwritableWorkDir(t *testing.T) {
	s := NewSynthesizer(&fakeCodec{}, testMergeConfig(t.TempDir()).Sound, logrus.NewEntry(logrus.New()))

	_, err := s.Synthesize(context.Background(), renderTestFrame(t, 1, false), 0.5, false, filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))
}

func TestAssembleFinalOnlyTransition(t *testing.T) {
	work := t.TempDir()
	codec := &fakeCodec{}
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	clip, err := NewSynthesizer(codec, testMergeConfig(t.TempDir()).Sound, entry).
		Synthesize(context.Background(), renderTestFrame(t, 4, true), 2.0, true, work)
	require.NoError(t, err)

	segment, err := NewAssembler(codec, entry).Assemble(context.Background(), clip, nil, work)
	require.NoError(t, err)
	assert.Equal(t, "segment_004.mp4", filepath.Base(segment))

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	require.Len(t, entries, 1, "只剩下 segment")

	info, err := codec.Probe(context.Background(), segment)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, info.Duration, 1e-9)
}

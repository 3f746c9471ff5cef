package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kbChunks = []Chunk{
	{ID: "c1", SourcePath: "kb/vpn.md", DocumentTitle: "VPN Guide", SectionTitle: "Error 809", Text: "VPN error 809 means the tunnel is blocked by the firewall. Restart the AnyConnect client."},
	{ID: "c2", SourcePath: "kb/email.md", DocumentTitle: "Email Guide", SectionTitle: "Outlook", Text: "Outlook cannot connect to the mailbox. Rebuild the Outlook profile."},
	{ID: "c3", SourcePath: "kb/wifi.md", DocumentTitle: "WiFi Guide", SectionTitle: "", Text: "Forget the wireless network and join the corporate SSID again."},
}

func TestSnippet(t *testing.T) {
	short := "Restart the client."
	assert.Equal(t, short, Snippet(short))
	assert.Equal(t, "line one line two", Snippet("  line one\nline two \n"))

	long := strings.Repeat("abcd ", 100)
	got := Snippet(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 243)

	exact := strings.Repeat("x", 240)
	assert.Equal(t, exact, Snippet(exact))

	multibyte := strings.Repeat("é", 300)
	assert.Equal(t, 243, utf8.RuneCountInString(Snippet(multibyte)))
}

func TestNewCitation(t *testing.T) {
	c := NewCitation(kbChunks[0], 1.5)
	assert.Equal(t, "kb/vpn.md#Error 809", c.SourceID)
	assert.Equal(t, "VPN Guide — Error 809", c.Title)
	assert.Equal(t, 1.0, c.Score)

	noSection := NewCitation(kbChunks[2], -0.1)
	assert.Equal(t, "kb/wifi.md", noSection.SourceID)
	assert.Equal(t, "WiFi Guide", noSection.Title)
	assert.Equal(t, 0.0, noSection.Score)
}

func TestLexicalEngineEmptyIndex(t *testing.T) {
	citations, best, err := NewLexicalEngine(nil).Retrieve(context.Background(), "vpn", 5)

	require.NoError(t, err)
	assert.Empty(t, citations)
	assert.NotNil(t, citations)
	assert.Equal(t, 0.0, best)
}

func TestLexicalEngineRanksRelevantChunkFirst(t *testing.T) {
	e := NewLexicalEngine(kbChunks)

	citations, best, err := e.Retrieve(context.Background(), "AnyConnect VPN error 809", 0)

	require.NoError(t, err)
	require.NotEmpty(t, citations)
	assert.Equal(t, "kb/vpn.md#Error 809", citations[0].SourceID)
	assert.Equal(t, citations[0].Score, best)
	assert.Greater(t, best, 0.0)
	assert.LessOrEqual(t, best, 1.0)
	for i := 1; i < len(citations); i++ {
		assert.GreaterOrEqual(t, citations[i-1].Score, citations[i].Score)
	}
}

func TestLexicalEngineDropsNonPositiveScores(t *testing.T) {
	e := NewLexicalEngine(kbChunks)

	citations, best, err := e.Retrieve(context.Background(), "outlook", 5)
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, "kb/email.md#Outlook", citations[0].SourceID)
	assert.Greater(t, best, 0.0)

	citations, best, err = e.Retrieve(context.Background(), "the and of", 5)
	require.NoError(t, err)
	assert.Empty(t, citations)
	assert.Equal(t, 0.0, best)
}

func TestLexicalEngineTieBreaksOnChunkID(t *testing.T) {
	e := NewLexicalEngine([]Chunk{
		{ID: "b", SourcePath: "b.md", DocumentTitle: "B", Text: "reset password"},
		{ID: "a", SourcePath: "a.md", DocumentTitle: "A", Text: "reset password"},
		{ID: "c", SourcePath: "c.md", DocumentTitle: "C", Text: "reset password"},
	})

	citations, _, err := e.Retrieve(context.Background(), "password", 2)

	require.NoError(t, err)
	require.Len(t, citations, 2)
	assert.Equal(t, "a.md", citations[0].SourceID)
	assert.Equal(t, "b.md", citations[1].SourceID)
}

func TestAnalyzeBuildsBigramsAfterStopWords(t *testing.T) {
	assert.Equal(t, []string{"vpn", "drops", "vpn drops"}, analyze("The VPN drops"))
}

type fakeSource struct {
	chunks []Chunk
	err    error
}

func (f fakeSource) ListChunks(context.Context) ([]Chunk, error) {
	return f.chunks, f.err
}

func TestBuildLexicalEngine(t *testing.T) {
	e, err := BuildLexicalEngine(context.Background(), fakeSource{chunks: kbChunks})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Size())

	_, err = BuildLexicalEngine(context.Background(), fakeSource{err: errors.New("db down")})
	assert.Error(t, err)
}

type fakeEmbedder struct {
	vectors [][]float32
	err     error
}

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return f.vectors, f.err
}

type fakeIndex struct {
	neighbors []Neighbor
	dims      []int
	gotLimit  int
}

func (f *fakeIndex) NearestChunks(_ context.Context, _ []float32, limit int) ([]Neighbor, error) {
	f.gotLimit = limit
	if len(f.neighbors) > limit {
		return f.neighbors[:limit], nil
	}
	return f.neighbors, nil
}

func (f *fakeIndex) EmbeddingDimensions(context.Context) ([]int, error) {
	return f.dims, nil
}

func TestVectorEngineEmptyIndex(t *testing.T) {
	e := NewVectorEngine(&fakeIndex{}, fakeEmbedder{vectors: [][]float32{{1, 0}}}, 2)

	citations, best, err := e.Retrieve(context.Background(), "vpn", 0)

	require.NoError(t, err)
	assert.Empty(t, citations)
	assert.Equal(t, 0.0, best)
}

func TestVectorEngineScoresAndOrder(t *testing.T) {
	idx := &fakeIndex{neighbors: []Neighbor{
		{Chunk: kbChunks[1], Distance: 0.4},
		{Chunk: kbChunks[0], Distance: 0.1},
		{Chunk: kbChunks[2], Distance: 1.3},
	}}
	e := NewVectorEngine(idx, fakeEmbedder{vectors: [][]float32{{1, 0}}}, 2)

	citations, best, err := e.Retrieve(context.Background(), "vpn", 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, idx.gotLimit)
	require.Len(t, citations, 3)
	assert.Equal(t, "kb/vpn.md#Error 809", citations[0].SourceID)
	assert.InDelta(t, 0.9, best, 1e-9)
	assert.InDelta(t, 0.6, citations[1].Score, 1e-9)
	assert.Equal(t, 0.0, citations[2].Score)
}

func TestVectorEngineTieBreak(t *testing.T) {
	idx := &fakeIndex{neighbors: []Neighbor{
		{Chunk: Chunk{ID: "z", SourcePath: "z.md"}, Distance: 0.2},
		{Chunk: Chunk{ID: "m", SourcePath: "m.md"}, Distance: 0.2},
	}}
	e := NewVectorEngine(idx, fakeEmbedder{vectors: [][]float32{{1}}}, 1)

	citations, _, err := e.Retrieve(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Equal(t, "m.md", citations[0].SourceID)
	assert.Equal(t, "z.md", citations[1].SourceID)
}

func TestVectorEnginePropagatesEmbeddingFailure(t *testing.T) {
	boom := errors.New("embedding backend down")
	e := NewVectorEngine(&fakeIndex{}, fakeEmbedder{err: boom}, 2)

	_, _, err := e.Retrieve(context.Background(), "vpn", 5)
	assert.ErrorIs(t, err, boom)
}

func TestVectorEngineValidate(t *testing.T) {
	ok := NewVectorEngine(&fakeIndex{dims: []int{768}}, fakeEmbedder{}, 768)
	assert.NoError(t, ok.Validate(context.Background()))

	empty := NewVectorEngine(&fakeIndex{}, fakeEmbedder{}, 768)
	assert.NoError(t, empty.Validate(context.Background()))

	bad := NewVectorEngine(&fakeIndex{dims: []int{768, 1536}}, fakeEmbedder{}, 768)
	assert.ErrorIs(t, bad.Validate(context.Background()), ErrInvalidIndex)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, CosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2.0, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 1.0, CosineDistance([]float32{1}, []float32{1, 0}))
}

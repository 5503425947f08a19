package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/stats"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/translation"
)

type fakeBackend struct {
	calls int
	err   error
}

func (f *fakeBackend) Translate(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "译:" + text, nil
}

func (f *fakeBackend) Name() string { return "fake" }

func textBlock(id, text string) document.Block {
	return document.Block{
		ID: id, Page: 1,
		X: 72, Y: 90, Width: 200, Height: 14,
		Text: text, BlockType: document.BlockTypeText, Translatable: true,
	}
}

func TestTranslateUsesBackend(t *testing.T) {
	backend := &fakeBackend{}
	service := translation.NewService(translation.NewMemoryCache(), backend)
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "The quick brown fox jumps"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, "译:The quick brown fox jumps", doc.Blocks[0].TranslatedText)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, 1, st.FromService)
	assert.Equal(t, 1, st.Processed)
	assert.Greater(t, doc.Blocks[0].FontSize, 0.0, "译文块带上适配后的字号")
}

func TestTranslateExactCacheHitSkipsBackend(t *testing.T) {
	cache := translation.NewMemoryCache()
	require.NoError(t, cache.Set("The quick brown fox jumps", "敏捷的棕色狐狸跳了起来"))

	backend := &fakeBackend{}
	service := translation.NewService(cache, backend)
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "The  quick\tbrown\nfox jumps"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, "敏捷的棕色狐狸跳了起来", doc.Blocks[0].TranslatedText)
	assert.Equal(t, 0, backend.calls, "空白差异不该打到后端")
	assert.Equal(t, 1, st.FromCache)
}

func TestTranslateFuzzyHit(t *testing.T) {
	cache := translation.NewMemoryCache()
	require.NoError(t, cache.Set("Convolutional neural networks for image classification", "用于图像分类的卷积神经网络"))

	service := translation.NewService(cache, &fakeBackend{})
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "Convolutional neural networks"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, "用于图像分类的卷积神经网络", doc.Blocks[0].TranslatedText)
	assert.Equal(t, 1, st.FromFuzzy)
	assert.Equal(t, 0, st.FromService)
}

func TestTranslateGlossaryWins(t *testing.T) {
	backend := &fakeBackend{}
	service := translation.NewService(
		translation.NewMemoryCache(),
		backend,
		translation.WithGlossary(map[string]string{"Transformer": "变换器"}),
	)
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "Transformer"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, "变换器", doc.Blocks[0].TranslatedText)
	assert.Equal(t, 1, st.FromGlossary)
	assert.Equal(t, 0, backend.calls)
}

func TestTranslateServiceFailureKeepsOriginal(t *testing.T) {
	backend := &fakeBackend{err: errors.New("HTTP 500 internal server error")}
	service := translation.NewService(translation.NewMemoryCache(), backend)
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "This sentence will fail to translate"),
		textBlock("page_1_block_1", "And the run still completes"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc), "服务失败不中断整个文档")
	assert.Empty(t, doc.Blocks[0].TranslatedText)
	assert.Empty(t, doc.Blocks[1].TranslatedText)
	assert.Equal(t, 2, st.Skipped)
	assert.Equal(t, 2, st.ServiceErrors)
	assert.Equal(t, 0, st.Processed)
}

func TestTranslateOfflineWithoutBackend(t *testing.T) {
	service := translation.NewService(translation.NewMemoryCache(), nil)
	st := stats.NewRunStats()
	p := New(service, st)

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "No backend configured here"),
	}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Empty(t, doc.Blocks[0].TranslatedText)
	assert.Equal(t, 1, st.Skipped)
	assert.Equal(t, 0, st.ServiceErrors, "离线模式不算服务失败")
}

func TestTranslateClassifiesUntypedBlocks(t *testing.T) {
	backend := &fakeBackend{}
	service := translation.NewService(translation.NewMemoryCache(), backend)
	st := stats.NewRunStats()
	p := New(service, st)

	blocks := []document.Block{
		{ID: "page_1_block_0", Page: 1, X: 1, Y: 1, Width: 50, Height: 10, Text: "(5)"},
		{ID: "page_1_block_1", Page: 1, X: 1, Y: 20, Width: 200, Height: 10, Text: "A plain English sentence to translate."},
	}
	doc := &document.Document{Blocks: blocks}

	require.NoError(t, p.Translate(context.Background(), doc))

	assert.Equal(t, document.BlockTypeFormula, doc.Blocks[0].BlockType)
	assert.False(t, doc.Blocks[0].Translatable)
	assert.Empty(t, doc.Blocks[0].TranslatedText)

	assert.Equal(t, document.BlockTypeText, doc.Blocks[1].BlockType)
	assert.True(t, doc.Blocks[1].Translatable)
	assert.NotEmpty(t, doc.Blocks[1].TranslatedText)
	assert.Equal(t, 1, backend.calls)
}

func TestTranslateSkipsUntranslatable(t *testing.T) {
	backend := &fakeBackend{}
	service := translation.NewService(translation.NewMemoryCache(), backend)
	st := stats.NewRunStats()
	p := New(service, st)

	formula := textBlock("page_1_block_0", `\sum_{i} w_i x_i`)
	formula.BlockType = document.BlockTypeFormula
	formula.Translatable = false

	doc := &document.Document{Blocks: []document.Block{formula}}
	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, 0, backend.calls)
	assert.Equal(t, 1, st.Skipped)
}

func TestTranslatePreservesExistingTranslations(t *testing.T) {
	backend := &fakeBackend{}
	service := translation.NewService(translation.NewMemoryCache(), backend)
	st := stats.NewRunStats()
	p := New(service, st)

	block := textBlock("page_1_block_0", "Already translated elsewhere")
	block.TranslatedText = "已有译文"
	doc := &document.Document{Blocks: []document.Block{block}}

	require.NoError(t, p.Translate(context.Background(), doc))
	assert.Equal(t, "已有译文", doc.Blocks[0].TranslatedText)
	assert.Equal(t, 0, backend.calls)
	assert.Greater(t, doc.Blocks[0].FontSize, 0.0)
}

func TestTranslateWarmCacheRerunIsIdentical(t *testing.T) {
	cache := translation.NewMemoryCache()
	backend := &fakeBackend{}
	service := translation.NewService(cache, backend)

	makeDoc := func() *document.Document {
		return &document.Document{Blocks: []document.Block{
			textBlock("page_1_block_0", "Deterministic output matters"),
			textBlock("page_1_block_1", "Each block is independent"),
		}}
	}

	first := makeDoc()
	require.NoError(t, New(service, stats.NewRunStats()).Translate(context.Background(), first))
	assert.Equal(t, 2, backend.calls)

	second := makeDoc()
	st := stats.NewRunStats()
	require.NoError(t, New(service, st).Translate(context.Background(), second))

	assert.Equal(t, 2, backend.calls, "暖缓存重跑不再调用后端")
	assert.Equal(t, 2, st.FromCache)
	for i := range first.Blocks {
		assert.Equal(t, first.Blocks[i].TranslatedText, second.Blocks[i].TranslatedText)
		assert.Equal(t, first.Blocks[i].FontSize, second.Blocks[i].FontSize)
	}
}

func TestTranslateHonorsContextCancellation(t *testing.T) {
	service := translation.NewService(translation.NewMemoryCache(), &fakeBackend{})
	p := New(service, stats.NewRunStats())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &document.Document{Blocks: []document.Block{
		textBlock("page_1_block_0", "never reached"),
	}}
	err := p.Translate(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

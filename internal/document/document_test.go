package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockID(t *testing.T) {
	assert.Equal(t, "page_1_block_0", BlockID(1, 0))
	assert.Equal(t, "page_12_block_34", BlockID(12, 34))
}

func TestPageSize(t *testing.T) {
	doc := &Document{
		Pages: []PageInfo{
			{Number: 1, Width: 595, Height: 842},
			{Number: 2},
		},
	}

	t.Run("有记录的页", func(t *testing.T) {
		w, h := doc.PageSize(1)
		assert.Equal(t, 595.0, w)
		assert.Equal(t, 842.0, h)
	})

	t.Run("记录了零尺寸时退回默认", func(t *testing.T) {
		w, h := doc.PageSize(2)
		assert.Equal(t, DefaultPageWidth, w)
		assert.Equal(t, DefaultPageHeight, h)
	})

	t.Run("未记录的页退回默认", func(t *testing.T) {
		w, h := doc.PageSize(99)
		assert.Equal(t, DefaultPageWidth, w)
		assert.Equal(t, DefaultPageHeight, h)
	})
}

func TestPageNumbersAndBlocksOnPage(t *testing.T) {
	doc := &Document{
		Blocks: []Block{
			{ID: "page_2_block_0", Page: 2, Text: "b"},
			{ID: "page_1_block_0", Page: 1, Text: "a"},
			{ID: "page_2_block_1", Page: 2, Text: "c"},
		},
	}

	assert.Equal(t, []int{1, 2}, doc.PageNumbers())

	page2 := doc.BlocksOnPage(2)
	require.Len(t, page2, 2)
	assert.Equal(t, "b", page2[0].Text)
	assert.Equal(t, "c", page2[1].Text)
	assert.Empty(t, doc.BlocksOnPage(3))
}

func TestParseWrappedDocument(t *testing.T) {
	data := []byte(`{
		"pages": [{"number": 1, "width": 612, "height": 792}],
		"blocks": [
			{"id": "page_1_block_0", "page": 1, "x": 72, "y": 90, "width": 200, "height": 14,
			 "text": "Hello world", "block_type": "text", "translatable": true}
		]
	}`)

	doc, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "Hello world", doc.Blocks[0].Text)
	assert.True(t, doc.Blocks[0].Translatable)
}

func TestParseBareArray(t *testing.T) {
	data := []byte(`[
		{"id": "page_1_block_0", "page": 1, "x": 1, "y": 2, "width": 3, "height": 4,
		 "text": "(5)", "block_type": "formula", "translatable": false}
	]`)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, doc.Pages)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, BlockTypeFormula, doc.Blocks[0].BlockType)
}

func TestParseErrors(t *testing.T) {
	t.Run("空文件", func(t *testing.T) {
		_, err := Parse([]byte("  \n "))
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("坏 JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"blocks": [`))
		assert.Error(t, err)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "blocks.json")

	doc := &Document{
		Pages: []PageInfo{{Number: 1, Width: 612, Height: 792}},
		Blocks: []Block{
			{
				ID: "page_1_block_0", Page: 1,
				X: 72, Y: 90, Width: 200, Height: 14,
				Text: "Hello", BlockType: BlockTypeText, Translatable: true,
				TranslatedText: "你好", FontSize: 9.5,
			},
		},
	}

	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, loaded.Pages)
	assert.Equal(t, doc.Blocks, loaded.Blocks)
}

func TestUntranslatedBlockOmitsOptionalFields(t *testing.T) {
	data, err := json.Marshal(Block{ID: "page_1_block_0", Page: 1, Text: "raw"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "translated_text")
	assert.NotContains(t, string(data), "font_size")
}

func TestDecodeText(t *testing.T) {
	t.Run("UTF-8 原样返回", func(t *testing.T) {
		assert.Equal(t, "中文 mixed", DecodeText([]byte("中文 mixed")))
	})

	t.Run("UTF-8 BOM 被剥掉", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
		assert.Equal(t, "hello", DecodeText(data))
	})

	t.Run("GBK 自动转换", func(t *testing.T) {
		// “中文” 的 GBK 编码
		data := []byte{0xD6, 0xD0, 0xCE, 0xC4}
		assert.Equal(t, "中文", DecodeText(data))
	})

	t.Run("UTF-16 LE BOM", func(t *testing.T) {
		data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
		assert.Equal(t, "hi", DecodeText(data))
	})

	t.Run("空输入", func(t *testing.T) {
		assert.Equal(t, "", DecodeText(nil))
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

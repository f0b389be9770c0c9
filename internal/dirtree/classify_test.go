package dirtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		headline string
		want     Kind
	}{
		{"index.html", KindFile},
		{"2024/foo.html", KindFile},
		{"_wrapper", KindFlatten},
		{"_feed.xml", KindFile},
		{"posts", KindDir},
		{"posts/2024", KindDir},
		{"", KindDir},
	}
	for _, tt := range tests {
		t.Run(tt.headline, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.headline))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dir", KindDir.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "flatten", KindFlatten.String())
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name  string
		isDir bool
		want  Entry
	}{
		{"posts", true, Entry{Name: "posts", IsDir: true}},
		{"v1.2", true, Entry{Name: "v1.2", IsDir: true}},
		{"hello.md", false, Entry{Name: "hello.md", Stem: "hello", Ext: "md"}},
		{"archive.tar.gz", false, Entry{Name: "archive.tar.gz", Stem: "archive.tar", Ext: "gz"}},
		{".gitignore", false, Entry{Name: ".gitignore", Stem: ".gitignore"}},
		{"README", false, Entry{Name: "README", Stem: "README"}},
		{"trailing.", false, Entry{Name: "trailing.", Stem: "trailing", Ext: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEntry(tt.name, tt.isDir))
		})
	}
}

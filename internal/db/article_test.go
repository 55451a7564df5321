package db

import (
	"testing"
	"time"
)

func timePtr(value time.Time) *time.Time {
	return &value
}

func TestArticleIsPublished(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    bool
	}{
		{
			name:    "published in the past",
			article: Article{Base: Base{IsActive: true}, PublishAt: timePtr(time.Now().Add(-time.Hour))},
			want:    true,
		},
		{
			name:    "no publish time",
			article: Article{Base: Base{IsActive: true}},
			want:    false,
		},
		{
			name:    "scheduled in the future",
			article: Article{Base: Base{IsActive: true}, PublishAt: timePtr(time.Now().Add(time.Hour))},
			want:    false,
		},
		{
			name:    "retired with a past publish time",
			article: Article{Base: Base{IsActive: false}, PublishAt: timePtr(time.Now().Add(-time.Hour))},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.article.IsPublished(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

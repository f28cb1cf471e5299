package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"trailing view count", "[SellerX] Great Deal) 12", "[SellerX] Great Deal)"},
		{"no artifact", "갤럭시 버즈3 프로", "갤럭시 버즈3 프로"},
		{"whitespace only trim", "  상품명  ", "상품명"},
		{"count without space", "USB 충전기 (5,900원/무배)9", "USB 충전기 (5,900원/무배)"},
		{"three digits kept", "모니터 (159,000원) 100", "모니터 (159,000원) 100"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.title))
		})
	}
}

func TestCleanTitleIdempotent(t *testing.T) {
	titles := []string{
		"[SellerX] Great Deal) 12",
		"무선 마우스 (12,900/) 3",
		"plain title",
		") 9",
	}
	for _, title := range titles {
		once := CleanTitle(title)
		assert.Equal(t, once, CleanTitle(once), "title %q", title)
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  int64
	}{
		{"comma grouped with won", "한정수량 35,750원 무료배송", 35750},
		{"spaced won marker", "노트북 파우치 9,000 원", 9000},
		{"manwon multiplier", "초특가 24만원", 240000},
		{"paren slash form", "상품명 (35,750/)", 35750},
		{"paren comma form", "상품명 (12,900,무료)", 12900},
		{"no marker", "그냥 제목입니다", 0},
		{"won wins over paren", "케이블 1,500원 (2,000/)", 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrice(tt.title))
		})
	}
}

// The trailing-double-zero repair treats "9,00"-style truncated groupings as
// thousands. Known approximation: a genuine 900-won price is misread as 9000.
func TestExtractPriceDoubleZeroRepair(t *testing.T) {
	assert.Equal(t, int64(9000), ExtractPrice("초특가 900원"))
	assert.Equal(t, int64(950), ExtractPrice("초특가 950원"))
	assert.Equal(t, int64(9000), ExtractPrice("한정 (900/)"))
	assert.Equal(t, int64(3900), ExtractPrice("한정 (3,900/)"))
}

func TestFreeShipping(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"갤럭시 버즈 무료배송", true},
		{"와우회원 한정 특가", true},
		{"마우스패드 무배", true},
		{"배송비 3,000원", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FreeShipping(tt.title), "title %q", tt.title)
	}
}

func TestStripBrackets(t *testing.T) {
	assert.Equal(t, "G마켓", StripBrackets("[G마켓]"))
	assert.Equal(t, "디지털", StripBrackets(" [디지털] "))
	assert.Equal(t, "plain", StripBrackets("plain"))
}

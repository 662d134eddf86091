package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmount_CanonicalTotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "words and figures layout",
			text: "价税合计（大写）壹佰贰拾叁元肆角伍分（小写）￥123.45",
			want: "123.45",
		},
		{
			name: "label with colon",
			text: "发票 价税合计：88.00 备注",
			want: "88.00",
		},
		{
			name: "currency symbol between label and figure",
			text: "价税合计 ¥ 9,999.99",
			want: "9999.99",
		},
		{
			name: "thousands separators stripped exactly",
			text: "价税合计（大写）壹佰贰拾叁万元整（小写）¥1,230,000.00",
			want: "1230000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.text)
			if got.Tier != TierCanonical {
				t.Errorf("Amount() tier = %q, want %q", got.Tier, TierCanonical)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Value.Equal(want) {
				t.Errorf("Amount() = %s, want %s", got.Value, want)
			}
		})
	}
}

func TestAmount_TabularTotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "total row takes last column",
			text: "项目 金额 税额 价税\n合计 ¥90.00 ¥10.00 ¥100.00",
			want: "100.00",
		},
		{
			name: "subtotal row",
			text: "小计 1,000.00 130.00 1,130.00",
			want: "1130.00",
		},
		{
			name: "tax inclusive label",
			text: "含税总计 200.00",
			want: "200.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.text)
			if got.Tier != TierTabular {
				t.Errorf("Amount() tier = %q, want %q", got.Tier, TierTabular)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Value.Equal(want) {
				t.Errorf("Amount() = %s, want %s", got.Value, want)
			}
		})
	}
}

func TestAmount_FallbackLabels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "total amount label",
			text: "总金额：520.00",
			want: "520.00",
		},
		{
			name: "figures marker",
			text: "（小写）¥66.60",
			want: "66.60",
		},
		{
			name: "rmb label",
			text: "人民币 88.88 元",
			want: "88.88",
		},
		{
			name: "net plus tax is summed",
			text: "金额：90.00 税额：10.00",
			want: "100.00",
		},
		{
			name: "bare currency symbol",
			text: "随附 ￥42.00",
			want: "42.00",
		},
		{
			name: "standalone grouped decimal",
			text: "随便的文字 1,234.56 其他",
			want: "1234.56",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.text)
			if got.Tier != TierFallback {
				t.Errorf("Amount() tier = %q, want %q", got.Tier, TierFallback)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Value.Equal(want) {
				t.Errorf("Amount() = %s, want %s", got.Value, want)
			}
		})
	}
}

func TestAmount_KeywordContext(t *testing.T) {
	// 1234.56 has four integer digits and no separator, so no earlier tier
	// accepts it; the keyword scan picks it up near 合计.
	got := Amount("合计金额为1234.56元")
	if got.Tier != TierKeyword {
		t.Errorf("Amount() tier = %q, want %q", got.Tier, TierKeyword)
	}
	if !got.Value.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Amount() = %s, want 1234.56", got.Value)
	}
}

func TestAmount_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "no numbers at all", text: "这张发票什么数字都没有"},
		{name: "decimal only in number context", text: "发票号码 123.45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.text)
			if got.Tier != TierNone {
				t.Errorf("Amount() tier = %q, want none", got.Tier)
			}
			if !got.Value.IsZero() {
				t.Errorf("Amount() = %s, want 0", got.Value)
			}
		})
	}
}

func TestAmount_TierOrder(t *testing.T) {
	// When both a canonical line and a bare currency amount are present, the
	// canonical tier wins regardless of position in the text.
	text := "￥1.00 价税合计：300.00"
	got := Amount(text)
	if got.Tier != TierCanonical {
		t.Errorf("Amount() tier = %q, want %q", got.Tier, TierCanonical)
	}
	if !got.Value.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("Amount() = %s, want 300.00", got.Value)
	}
}

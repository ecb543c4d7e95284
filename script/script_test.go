package script

import "testing"

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Simplified, "simplified"},
		{Traditional, "traditional"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"empty", "", Simplified},
		{"whitespace only", "   \n\t", Simplified},
		{"english only", "The quick brown fox jumps over the lazy dog.", Simplified},
		{"simplified", "简体中文文档解析服务，支持图片提取和文本分块。", Simplified},
		{"traditional", "繁體中文文檔解析服務，支持圖片提取和文本分塊。", Traditional},
		{"mixed mostly simplified", "这是一份简体中文报告，包含计划与问题讨论。", Simplified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Detect(tt.text)
			if got != tt.want {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetect_RatioBounds(t *testing.T) {
	_, ratio := Detect("繁體中文")
	if ratio < 0 || ratio > 1 {
		t.Errorf("ratio %f out of [0, 1]", ratio)
	}

	_, ratio = Detect("no chinese at all")
	if ratio != 0 {
		t.Errorf("ratio for non-Chinese text = %f, want 0", ratio)
	}
}

func TestIsTraditional(t *testing.T) {
	if IsTraditional("简体中文内容") {
		t.Error("simplified text reported as traditional")
	}
	if !IsTraditional("繁體中文內容請閱讀") {
		t.Error("traditional text not detected")
	}
}

// Package script classifies Chinese text as simplified or traditional.
// The OCR layer uses the result to pick the recognition model: simplified
// and traditional Chinese are separate Tesseract language packs, and running
// the wrong one degrades accuracy badly.
package script

import "strings"

// Kind is the detected Chinese script variant.
type Kind int

const (
	// Simplified indicates simplified Chinese (the default when no
	// distinguishing characters are present).
	Simplified Kind = iota
	// Traditional indicates traditional Chinese.
	Traditional
)

// String returns a human-readable representation of the script kind.
func (k Kind) String() string {
	switch k {
	case Simplified:
		return "simplified"
	case Traditional:
		return "traditional"
	default:
		return "unknown"
	}
}

// DefaultThreshold is the traditional-character ratio above which text is
// classified as traditional.
const DefaultThreshold = 0.3

// Reference vocabulary written in each variant. Characters that render the
// same in both variants appear in both strings and carry no signal, so the
// working sets below keep only the symmetric difference.
const (
	traditionalSample = "繁體中國語言學習閱讀書寫時間問題會議記錄報告機構組織團隊項目計劃執行監督管理運營財務會計審計" +
		"經濟貿易業務服務産品資源環境質量標準規範制度流程技術專業優勢劣勢機會威脅風險挑戰機遇發展戰略" +
		"營銷銷售客戶關係溝通協調合作競爭創新變革轉型升級優化調整改進提升強化增強鞏固穩定持續長期短期" +
		"當前未來趨勢方向目標任務責任義務權利利益價值觀念理念思想意識形態文化傳統習慣風俗禮儀節日慶典" +
		"藝術設計創作表現形式風格特點特徵屬性功能作用效果影響結果成果業績績效評估考核獎勵懲罰激勵約束"

	simplifiedSample = "简体中国语言学习阅读书写时间问题会议记录报告机构组织团队项目计划执行监督管理运营财务会计审计" +
		"经济贸易业务服务产品资源环境质量标准规范制度流程技术专业优势劣势机会威胁风险挑战机遇发展战略" +
		"营销销售客户关系沟通协调合作竞争创新变革转型升级优化调整改进提升强化增强巩固稳定持续长期短期" +
		"当前未来趋势方向目标任务责任义务权利利益价值观念理念思想意识形态文化传统习惯风俗礼仪节日庆典" +
		"艺术设计创作表现形式风格特点特征属性功能作用效果影响结果成果业绩绩效评估考核奖励惩罚激励约束"
)

var traditionalChars, simplifiedChars = buildSets(traditionalSample, simplifiedSample)

// buildSets returns the distinguishing character sets: characters present
// in both samples are shared forms and are dropped from both sides.
func buildSets(traditional, simplified string) (map[rune]struct{}, map[rune]struct{}) {
	trad := make(map[rune]struct{}, len(traditional)/3)
	for _, r := range traditional {
		trad[r] = struct{}{}
	}

	simp := make(map[rune]struct{}, len(simplified)/3)
	for _, r := range simplified {
		simp[r] = struct{}{}
	}

	for r := range simp {
		if _, ok := trad[r]; ok {
			delete(trad, r)
			delete(simp, r)
		}
	}

	return trad, simp
}

// Detect classifies text using DefaultThreshold. It returns the detected
// kind and the ratio of traditional characters among all distinguishing
// characters found. Text with no distinguishing characters is reported as
// simplified with ratio 0.
func Detect(text string) (Kind, float64) {
	return DetectWithThreshold(text, DefaultThreshold)
}

// DetectWithThreshold classifies text, reporting Traditional when the
// traditional-character ratio meets or exceeds threshold.
func DetectWithThreshold(text string, threshold float64) (Kind, float64) {
	if strings.TrimSpace(text) == "" {
		return Simplified, 0
	}

	var traditional, simplified int
	for _, r := range text {
		if _, ok := traditionalChars[r]; ok {
			traditional++
		} else if _, ok := simplifiedChars[r]; ok {
			simplified++
		}
	}

	total := traditional + simplified
	if total == 0 {
		return Simplified, 0
	}

	ratio := float64(traditional) / float64(total)
	if ratio >= threshold {
		return Traditional, ratio
	}
	return Simplified, ratio
}

// IsTraditional reports whether text reads as traditional Chinese at the
// default threshold.
func IsTraditional(text string) bool {
	kind, _ := Detect(text)
	return kind == Traditional
}

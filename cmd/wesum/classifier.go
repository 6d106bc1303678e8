// cmd/wesum/classifier.go
package main

import "strings"

// Classification is the outcome of noise detection for one article.
type Classification struct {
	Level NoiseLevel
	Type  string // category name, empty when Level is NoiseNone
}

// Classifier assigns a noise level and type from title and body text alone.
// Classification runs once, before summarization, because the prompt choice
// depends on it; nothing downstream re-derives it.
type Classifier interface {
	Classify(title, body string) Classification
}

// noiseCategory pairs a category name with its keyword list. Order matters:
// when two categories score identically the earlier entry wins.
type noiseCategory struct {
	Name     string
	Keywords []string
}

// noiseCategories is the fixed promotional-keyword table.
var noiseCategories = []noiseCategory{
	{"招聘", []string{"招聘", "诚聘", "猎头", "职位", "JD", "简历", "应聘", "面试", "入职", "薪资"}},
	{"带货", []string{
		"元", "块", "毛", "折", "优惠", "限时", "特价", "清仓", "秒杀", "抢购",
		"购买", "下单", "立减", "满减", "券", "福利", "红包", "补贴",
		"支", "件", "套", "盒", "瓶", "袋", "斤", "克", "ml", "L",
		"立即抢", "马上抢", "速抢", "扫码", "点击购买", "购买链接",
		"爆款", "热销", "新品", "新品上市", "配置拉满", "性价比", "超值",
		"包邮", "货到付款", "七天退换", "正品", "官方", "旗舰店", "自营",
	}},
	{"广告", []string{"赞助", "广告", "品牌推广", "商业合作", "软文", "推广"}},
	{"课程", []string{"课程", "训练营", "扫码", "立减", "报名", "学习", "培训", "讲座", "公开课"}},
	{"社群", []string{"知识星球", "付费社群", "会员", "加入社群", "社群", "粉丝群", "交流群"}},
	{"活动推广", []string{"会议报名", "展会报名", "早鸟票", "活动报名", "立即报名", "报名开启", "开启报名"}},
	{"融资", []string{"融资", "轮融资", "估值", "投资方", "募资", "IPO", "上市"}},
	{"公关", []string{"发布", "新品发布", "隆重推出", "盛大发布", "战略合作", "签署协议", "获奖"}},
}

// prCategories are announcement-style categories: abbreviated like noise,
// but never treated as pure spam, whatever their numeric score.
var prCategories = map[string]bool{
	"融资": true,
	"公关": true,
}

// noiseTypeNames maps category names to the friendly labels shown in digest
// banners.
var noiseTypeNames = map[string]string{
	"招聘":   "招聘广告",
	"带货":   "产品推广",
	"广告":   "商业广告",
	"课程":   "付费课程",
	"社群":   "社群推广",
	"活动推广": "活动推广",
}

func noiseTypeName(noiseType string) string {
	if name, ok := noiseTypeNames[noiseType]; ok {
		return name
	}
	return noiseType
}

// NewClassifier picks the classifier implementation by config name. The
// weighted scorer is canonical; "count" selects the legacy flat-count rule
// kept for compatibility with historical seen data.
func NewClassifier(kind string) Classifier {
	if kind == "count" {
		return &CountClassifier{categories: noiseCategories}
	}
	return &WeightedClassifier{categories: noiseCategories}
}

// WeightedClassifier scores categories with title hits weighted above body
// hits. A keyword counts once per distinct keyword found, not per
// repetition.
type WeightedClassifier struct {
	categories []noiseCategory
}

// Classify implements the weighted rule:
// weighted = titleHits*2.5 + bodyHits, categories under 2.0 are out, the
// highest survivor wins (first in table order on ties), then severity is
// decided from the winner's score and title-hit count.
func (c *WeightedClassifier) Classify(title, body string) Classification {
	bestIdx := -1
	bestScore := 0.0
	bestTitleHits := 0

	for i, cat := range c.categories {
		titleHits := countHits(title, cat.Keywords)
		bodyHits := countHits(body, cat.Keywords)
		score := float64(titleHits)*TitleWeight + float64(bodyHits)
		if score < MinCategoryScore {
			continue
		}
		if score > bestScore {
			bestIdx = i
			bestScore = score
			bestTitleHits = titleHits
		}
	}

	if bestIdx < 0 {
		return Classification{Level: NoiseNone}
	}

	winner := c.categories[bestIdx].Name
	if prCategories[winner] {
		return Classification{Level: NoisePR, Type: winner}
	}
	switch {
	case bestScore >= HeavyScore,
		bestScore >= HeavyTitleScore && bestTitleHits >= HeavyTitleHits:
		return Classification{Level: NoiseHeavy, Type: winner}
	case bestScore >= LightScore:
		return Classification{Level: NoiseLight, Type: winner}
	default:
		return Classification{Level: NoiseNone}
	}
}

// CountClassifier is the legacy rule: raw distinct-keyword matches over
// title+body, two or more matches flags the article. It under-weights title
// signal and exists only for byte-compatible reruns against old data.
type CountClassifier struct {
	categories []noiseCategory
}

// Classify implements the flat-count rule.
func (c *CountClassifier) Classify(title, body string) Classification {
	text := title + body
	bestIdx := -1
	bestCount := 0

	for i, cat := range c.categories {
		if count := countHits(text, cat.Keywords); count > bestCount {
			bestIdx = i
			bestCount = count
		}
	}

	if bestIdx < 0 || bestCount < 2 {
		return Classification{Level: NoiseNone}
	}
	winner := c.categories[bestIdx].Name
	if prCategories[winner] {
		return Classification{Level: NoisePR, Type: winner}
	}
	return Classification{Level: NoiseHeavy, Type: winner}
}

// countHits counts how many distinct keywords appear in text as substrings.
func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// ClassifyArticle applies the classifier and records the result on the
// article.
func ClassifyArticle(c Classifier, a *Article) {
	result := c.Classify(a.Title, a.Body)
	a.NoiseLevel = result.Level
	a.NoiseType = result.Type
}

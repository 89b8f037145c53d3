package config

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category 单词分类（与场景中可交互物体的分类编码一致：0/1/2）
type Category int

const (
	CategoryVegetable Category = iota // 蔬菜
	CategoryFruit                     // 水果
	CategoryPotion                    // 药水
)

// CategoryCount 分类数量
const CategoryCount = 3

// PotionPrefix 药水名称前缀（第 7 关会把药水包装为 "Poción de X"）
const PotionPrefix = "Poción de "

// String 返回分类名称
func (c Category) String() string {
	switch c {
	case CategoryVegetable:
		return "vegetable"
	case CategoryFruit:
		return "fruit"
	case CategoryPotion:
		return "potion"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Valid 判断分类编码是否合法
func (c Category) Valid() bool {
	return c >= CategoryVegetable && c <= CategoryPotion
}

// Word 单词：文本 + 分类
type Word struct {
	Text     string
	Category Category
}

// Emotion 第 7 关使用的情绪（颜色 + 名称）
type Emotion struct {
	Name  string
	Color color.RGBA
}

// WordBank 单词库
//
// 职责：
//   - 提供每个分类的固定单词列表
//   - 提供预定义的音节划分
//   - 提供情绪调色板
//
// 构建后只读，所有返回值都是副本。
type WordBank struct {
	words      map[Category][]Word
	partitions map[string][]string
	palette    []Emotion
}

// wordBankFile YAML 单词库文件结构
type wordBankFile struct {
	Vegetables []string            `yaml:"vegetables"`
	Fruits     []string            `yaml:"fruits"`
	Potions    []string            `yaml:"potions"`
	Partitions map[string][]string `yaml:"partitions"`
	Emotions   []emotionEntry      `yaml:"emotions"`
}

type emotionEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // 十六进制 "#RRGGBB"
}

// EmotionCount 情绪调色板条目数
const EmotionCount = 5

// DefaultWordBank 返回内置单词库
func DefaultWordBank() *WordBank {
	wb, err := newWordBank(defaultWordBankFile())
	if err != nil {
		// 内置数据非法属于编程错误
		panic(fmt.Sprintf("invalid built-in word bank: %v", err))
	}
	return wb
}

func defaultWordBankFile() *wordBankFile {
	return &wordBankFile{
		Vegetables: []string{"Tomate", "Pimiento", "Pepino", "Zanahoria", "Repollo"},
		Fruits:     []string{"Sandía", "Fresa", "Naranja", "Banano", "Manzana"},
		Potions:    []string{"Amor", "Moco", "Lágrima", "Vida", "Tierra", "Fuego", "Sombra"},
		Partitions: map[string][]string{
			// 蔬菜
			"Tomate":    {"To", "ma", "te"},
			"Pimiento":  {"Pi", "mi", "en", "to"},
			"Pepino":    {"Pe", "pi", "no"},
			"Zanahoria": {"Za", "na", "ho", "ria"},
			"Repollo":   {"Re", "po", "llo"},
			// 水果
			"Sandía":  {"San", "dí", "a"},
			"Fresa":   {"Fre", "sa"},
			"Naranja": {"Na", "ran", "ja"},
			"Banano":  {"Ba", "na", "no"},
			"Manzana": {"Man", "za", "na"},
			// 药水
			"Amor":    {"A", "mor"},
			"Moco":    {"Mo", "co"},
			"Lágrima": {"Lá", "gri", "ma"},
			"Vida":    {"Vi", "da"},
			"Tierra":  {"Tie", "rra"},
			"Fuego":   {"Fue", "go"},
			"Sombra":  {"Som", "bra"},
		},
		Emotions: []emotionEntry{
			{Name: "RABIA", Color: "#FF0000"},
			{Name: "DESAGRADO", Color: "#00CC00"},
			{Name: "TRISTEZA", Color: "#0000FF"},
			{Name: "ALEGRÍA", Color: "#FFFF00"},
			{Name: "MIEDO", Color: "#800080"},
		},
	}
}

// LoadWordBank 从 YAML 数据加载单词库
//
// 缺失的部分使用内置默认值补齐，随后整体校验。
func LoadWordBank(data []byte) (*WordBank, error) {
	var file wordBankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse word bank YAML: %w", err)
	}

	defaults := defaultWordBankFile()
	if len(file.Vegetables) == 0 {
		file.Vegetables = defaults.Vegetables
	}
	if len(file.Fruits) == 0 {
		file.Fruits = defaults.Fruits
	}
	if len(file.Potions) == 0 {
		file.Potions = defaults.Potions
	}
	if len(file.Partitions) == 0 {
		file.Partitions = defaults.Partitions
	}
	if len(file.Emotions) == 0 {
		file.Emotions = defaults.Emotions
	}

	wb, err := newWordBank(&file)
	if err != nil {
		return nil, fmt.Errorf("invalid word bank: %w", err)
	}
	return wb, nil
}

func newWordBank(file *wordBankFile) (*WordBank, error) {
	wb := &WordBank{
		words:      make(map[Category][]Word, CategoryCount),
		partitions: make(map[string][]string, len(file.Partitions)),
	}

	lists := map[Category][]string{
		CategoryVegetable: file.Vegetables,
		CategoryFruit:     file.Fruits,
		CategoryPotion:    file.Potions,
	}
	for c := CategoryVegetable; c <= CategoryPotion; c++ {
		if len(lists[c]) == 0 {
			return nil, fmt.Errorf("category %s has no words", c)
		}
		for _, text := range lists[c] {
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("category %s contains an empty word", c)
			}
			wb.words[c] = append(wb.words[c], Word{Text: text, Category: c})
		}
	}

	for word, syllables := range file.Partitions {
		if len(syllables) == 0 {
			return nil, fmt.Errorf("partition for %q is empty", word)
		}
		for i, s := range syllables {
			if s == "" {
				return nil, fmt.Errorf("partition for %q has an empty syllable at %d", word, i)
			}
		}
		// 音节按顺序拼接必须还原单词
		if joined := strings.Join(syllables, ""); joined != word {
			return nil, fmt.Errorf("partition for %q rejoins to %q", word, joined)
		}
		wb.partitions[word] = append([]string(nil), syllables...)
	}

	if len(file.Emotions) != EmotionCount {
		return nil, fmt.Errorf("emotion palette must have %d entries, got %d", EmotionCount, len(file.Emotions))
	}
	for _, e := range file.Emotions {
		c, err := parseHexColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("emotion %q: %w", e.Name, err)
		}
		wb.palette = append(wb.palette, Emotion{Name: e.Name, Color: c})
	}

	return wb, nil
}

// WordsFor 返回指定分类的单词列表（副本）
func (wb *WordBank) WordsFor(category Category) []Word {
	words := wb.words[category]
	result := make([]Word, len(words))
	copy(result, words)
	return result
}

// AllWords 按分类顺序返回全部单词
func (wb *WordBank) AllWords() []Word {
	var result []Word
	for c := CategoryVegetable; c <= CategoryPotion; c++ {
		result = append(result, wb.words[c]...)
	}
	return result
}

// HasPartition 判断单词是否有预定义的音节划分
func (wb *WordBank) HasPartition(text string) bool {
	_, ok := wb.partitions[text]
	return ok
}

// SyllablesOf 返回单词的音节列表
//
// 有预定义划分时返回其副本；否则按字符拆分（每个字符一个音节）。
// 按字符拆分是显式的降级策略，不是错误。
func (wb *WordBank) SyllablesOf(text string) []string {
	if syllables, ok := wb.partitions[text]; ok {
		return append([]string(nil), syllables...)
	}

	log.Printf("[WordBank] Warning: no partition for %q, falling back to one syllable per character", text)
	result := make([]string, 0, len(text))
	for _, r := range text {
		result = append(result, string(r))
	}
	return result
}

// EmotionPalette 返回情绪调色板（副本，固定 5 项）
func (wb *WordBank) EmotionPalette() []Emotion {
	result := make([]Emotion, len(wb.palette))
	copy(result, wb.palette)
	return result
}

// PotionName 为药水名加上 "Poción de " 前缀
func PotionName(text string) string {
	return PotionPrefix + text
}

// BarePotionName 去掉 "Poción de " 前缀（没有前缀时原样返回）
func BarePotionName(text string) string {
	if strings.HasPrefix(text, PotionPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(text, PotionPrefix))
	}
	return text
}

// parseHexColor 解析 "#RRGGBB" 格式的颜色
func parseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color must be #RRGGBB, got %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

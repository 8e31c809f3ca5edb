package intent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
)

const DefaultTemperature = 0.1

// EmbeddingScorer classifies by cosine similarity between the request and a
// prototype vector per label, the mean of the label's example utterances.
// Similarities are turned into probabilities with a softmax.
type EmbeddingScorer struct {
	embedder    embeddings.Embedder
	examples    map[Label][]string
	temperature float64

	mu         sync.Mutex
	prototypes map[Label][]float32
}

func NewEmbeddingScorer(embedder embeddings.Embedder, examples map[Label][]string, temperature float64) (*EmbeddingScorer, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if len(examples) == 0 {
		return nil, errors.New("at least one labelled example is required")
	}
	for label := range examples {
		if !label.Valid() {
			return nil, fmt.Errorf("examples reference unknown intent %q", label)
		}
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &EmbeddingScorer{
		embedder:    embedder,
		examples:    examples,
		temperature: temperature,
	}, nil
}

func (s *EmbeddingScorer) Score(ctx context.Context, text string) (map[Label]float64, error) {
	prototypes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	query, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	query = normalizeVector(query)

	sims := make(map[Label]float64, len(prototypes))
	top := math.Inf(-1)
	for label, proto := range prototypes {
		sim := dot(query, proto) / s.temperature
		sims[label] = sim
		top = math.Max(top, sim)
	}

	var sum float64
	for label, sim := range sims {
		e := math.Exp(sim - top)
		sims[label] = e
		sum += e
	}
	for label := range sims {
		sims[label] /= sum
	}

	return sims, nil
}

// load computes the prototypes once. A failed attempt is retried on the next call.
func (s *EmbeddingScorer) load(ctx context.Context) (map[Label][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prototypes != nil {
		return s.prototypes, nil
	}

	prototypes := make(map[Label][]float32, len(s.examples))
	for _, label := range Labels {
		texts := s.examples[label]
		if len(texts) == 0 {
			continue
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed examples for %s: %w", label, err)
		}
		if len(vectors) == 0 {
			return nil, fmt.Errorf("empty embeddings for %s", label)
		}

		prototypes[label] = normalizeVector(mean(vectors))
	}

	s.prototypes = prototypes
	return prototypes, nil
}

func mean(vectors [][]float32) []float32 {
	out := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			if i < len(v) {
				out[i] += v[i]
			}
		}
	}
	for i := range out {
		out[i] /= float32(len(vectors))
	}
	return out
}

// normalizeVector returns a unit-length copy of vec.
func normalizeVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		copy(out, vec)
		return out
	}
	norm := float32(math.Sqrt(float64(sum)))
	for i, v := range vec {
		out[i] = v / norm
	}

	return out
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// DefaultExamples are seed utterances for building label prototypes.
var DefaultExamples = map[Label][]string{
	Order:               {"我要下单", "帮我点菜", "订一桌四个人的位子"},
	GameRecommendation:  {"饭前玩什么游戏", "推荐几个聚会小游戏", "等菜的时候有什么好玩的"},
	HealthyDiet:         {"想吃得健康一点", "来点清淡少油的菜", "少盐少油的推荐"},
	Festival:            {"情人节吃什么", "春节聚餐菜单", "圣诞节套餐推荐"},
	Vegetarian:          {"我吃素", "有没有素食", "不吃肉的菜"},
	ChildOrElderly:      {"带小孩吃饭", "老人能吃的菜", "适合宝宝的饭菜"},
	WeightLoss:          {"我在减肥", "低卡减脂餐", "瘦身期间吃什么"},
	IntermittentFasting: {"我在断食", "控糖饮食", "无糖的选择"},
	SeasonalFood:        {"夏天吃点冷饮", "冬天来碗热汤", "当季的菜"},
	FitnessNutrition:    {"健身增肌吃什么", "高蛋白的菜", "练完吃点啥"},
	HolidayEvent:        {"国庆放假聚一下", "五一假期吃饭", "中秋家宴"},
	GroupGathering:      {"十个人聚会", "公司团建吃饭", "一大桌朋友聚餐"},
	TakeawayService:     {"可以外卖吗", "打包带走", "送到家"},
	AllergySafe:         {"我对花生过敏", "海鲜过敏能吃什么", "不含牛奶的菜"},
	NutritionalInfo:     {"这个菜热量多少", "营养成分", "有多少卡路里"},
	WeatherBased:        {"天太冷了吃点暖的", "下雨天吃什么", "天太热想吃凉的"},
}

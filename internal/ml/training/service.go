package training

import (
	"context"
	"errors"
	"fmt"

	"credtech/internal/domain"
	"credtech/internal/ml/balance"
	"credtech/internal/ml/common"
	"credtech/internal/ml/ensemble"
	"credtech/internal/ml/explain"
	"credtech/internal/ml/features"
	"credtech/internal/ml/labeling"
	"credtech/internal/ml/models/forest"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoSamples = errors.New("no feature rows to train on")

type PriceBarStore interface {
	LoadRaw(ctx context.Context) ([]domain.RawPriceBar, error)
}

type Config struct {
	ImportancePath    string
	RiskThreshold     float64
	SMOTENeighbors    int
	BalanceSeed       uint64
	SplitSeed         uint64
	TestFraction      float64
	Forest            forest.TrainOptions
	ChallengerEnabled bool

	// Challengers defaults to DefaultChallengers when ChallengerEnabled is set.
	Challengers []Challenger
}

type Service struct {
	tracer trace.Tracer
	store  PriceBarStore
	cfg    Config
}

// Result is everything a pipeline run produced. The trained models are dropped
// when the run returns.
type Result struct {
	CleanBars    int                        `json:"clean_bars"`
	FeatureRows  int                        `json:"feature_rows"`
	HighRiskRows int                        `json:"high_risk_rows"`
	BalancedRows int                        `json:"balanced_rows"`
	TrainCount   int                        `json:"train_count"`
	TestCount    int                        `json:"test_count"`
	Forest       Report                     `json:"forest"`
	Challengers  []ChallengerResult         `json:"challengers,omitempty"`
	Importance   []domain.FeatureImportance `json:"importance"`
	ArtifactPath string                     `json:"artifact_path"`
}

// ChallengerResult is a comparison model scored on the forest's test split.
// A failed challenger keeps its error and never fails the run.
type ChallengerResult struct {
	Name   string  `json:"name"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func NewService(tracer trace.Tracer, store PriceBarStore, cfg Config) *Service {
	if cfg.ImportancePath == "" {
		cfg.ImportancePath = "data/shap_feature_importance.png"
	}
	if cfg.SMOTENeighbors <= 0 {
		cfg.SMOTENeighbors = balance.DefaultNeighbors
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.Forest.Trees <= 0 {
		cfg.Forest.Trees = forest.DefaultTrainOptions().Trees
	}
	if cfg.Forest.MaxDepth <= 0 {
		cfg.Forest.MaxDepth = forest.DefaultTrainOptions().MaxDepth
	}
	if cfg.ChallengerEnabled && cfg.Challengers == nil {
		cfg.Challengers = DefaultChallengers()
	}
	return &Service{tracer: tracer, store: store, cfg: cfg}
}

// Run loads the price table and executes features, labels, balancing, split,
// training, evaluation and explanation in order.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "ml-training.run")
	defer span.End()

	raw, err := s.store.LoadRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price bars: %w", err)
	}
	bars := features.CleanBars(raw)
	rows := features.BuildRows(bars)
	labels := labeling.Apply(rows, s.cfg.RiskThreshold)

	res := &Result{CleanBars: len(bars), FeatureRows: len(rows), ArtifactPath: s.cfg.ImportancePath}
	for _, l := range labels {
		res.HighRiskRows += l
	}
	span.SetAttributes(
		attribute.Int("bars.clean", len(bars)),
		attribute.Int("rows.features", len(rows)),
		attribute.Int("rows.high_risk", res.HighRiskRows),
	)
	log.Info().
		Int("raw_bars", len(raw)).
		Int("clean_bars", len(bars)).
		Int("feature_rows", len(rows)).
		Int("high_risk", res.HighRiskRows).
		Msg("features built")
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: need at least %d clean bars, got %d", ErrNoSamples, features.MinHistory, len(bars))
	}

	x, y := common.Dataset(rows)
	balX, balY, err := balance.New(s.cfg.SMOTENeighbors, s.cfg.BalanceSeed).Resample(x, y)
	if err != nil {
		return nil, fmt.Errorf("balance classes: %w", err)
	}
	res.BalancedRows = len(balX)

	split, err := TrainTestSplit(balX, balY, s.cfg.TestFraction, s.cfg.SplitSeed)
	if err != nil {
		return nil, err
	}
	res.TrainCount = len(split.TrainX)
	res.TestCount = len(split.TestX)

	model, err := s.trainForest(ctx, split)
	if err != nil {
		return nil, err
	}
	preds, probs := model.PredictBatch(split.TestX)
	res.Forest = Evaluate(split.TestY, preds, probs)
	log.Info().
		Float64("accuracy", res.Forest.Accuracy).
		Float64("auc", res.Forest.AUC).
		Int("test", res.TestCount).
		Msg("random forest evaluated")

	if s.cfg.ChallengerEnabled {
		res.Challengers = s.runChallengers(ctx, split, probs)
	}

	ranking, err := s.explain(ctx, model, split.TestX)
	if err != nil {
		return nil, err
	}
	res.Importance = ranking
	return res, nil
}

func (s *Service) trainForest(ctx context.Context, split Split) (*forest.Model, error) {
	_, span := s.tracer.Start(ctx, "ml-training.train-forest")
	defer span.End()

	model, err := forest.Train(split.TrainX, split.TrainY, common.FeatureNames, s.cfg.Forest)
	if err != nil {
		return nil, fmt.Errorf("train random forest: %w", err)
	}
	return model, nil
}

func (s *Service) runChallengers(ctx context.Context, split Split, forestProbs []float64) []ChallengerResult {
	_, span := s.tracer.Start(ctx, "ml-training.challengers")
	defer span.End()

	members := []ensemble.Member{{Name: "forest", Weight: 0.4, Probs: forestProbs}}
	var out []ChallengerResult
	record := func(name string, preds []int, probs []float64, err error) {
		if err != nil {
			out = append(out, ChallengerResult{Name: name, Error: err.Error()})
			log.Warn().Err(err).Str("model", name).Msg("challenger training failed")
			return
		}
		report := Evaluate(split.TestY, preds, probs)
		out = append(out, ChallengerResult{Name: name, Report: &report})
		members = append(members, ensemble.Member{Name: name, Weight: 0.3, Probs: probs})
		log.Info().
			Str("model", name).
			Float64("accuracy", report.Accuracy).
			Float64("auc", report.AUC).
			Msg("challenger evaluated")
	}

	for _, c := range s.cfg.Challengers {
		model, err := c.Train(split.TrainX, split.TrainY)
		if err != nil {
			record(c.Name, nil, nil, err)
			continue
		}
		preds, probs := model.PredictBatch(split.TestX)
		record(c.Name, preds, probs, nil)
	}

	if len(members) > 1 {
		blender := ensemble.NewService()
		probs, err := blender.Blend(members...)
		if err != nil {
			record("blend", nil, nil, err)
		} else {
			record("blend", blender.Decide(probs), probs, nil)
		}
	}
	span.SetAttributes(attribute.Int("challengers", len(out)))
	return out
}

func (s *Service) explain(ctx context.Context, model *forest.Model, testX [][]float64) ([]domain.FeatureImportance, error) {
	_, span := s.tracer.Start(ctx, "ml-training.explain")
	defer span.End()

	attr := explain.ForestSHAP(model, testX, int(domain.RiskHigh))
	ranking := explain.GlobalImportance(attr, model.FeatureNames())
	if err := explain.RenderBarChart(ranking, s.cfg.ImportancePath); err != nil {
		return nil, fmt.Errorf("render importance chart: %w", err)
	}
	log.Info().Str("path", s.cfg.ImportancePath).Msg("feature importance saved")
	return ranking, nil
}

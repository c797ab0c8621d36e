package factory

import (
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/labels"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

// TriageFactory creates the categorization engine and the triage service
type TriageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTriageFactory creates a new triage factory
func NewTriageFactory(cfg *config.Config, logger *zap.Logger) *TriageFactory {
	return &TriageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCategorizer creates the categorization engine with the configured
// labels and unknown label policy
func (f *TriageFactory) CreateCategorizer(llmClient core.LLMClient) (*core.Categorizer, error) {
	catCfg, err := f.cfg.GetCategories()
	if err != nil {
		return nil, err
	}
	pipelineCfg, err := f.cfg.GetPipeline()
	if err != nil {
		return nil, err
	}

	specs := core.DefaultLabels()
	if len(catCfg.Labels) > 0 {
		specs = make([]core.LabelSpec, 0, len(catCfg.Labels))
		for _, l := range catCfg.Labels {
			specs = append(specs, core.LabelSpec{Name: l.Name, Description: l.Description})
		}
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}

	policy, err := labels.NewPolicy(names, labels.Mode(catCfg.UnknownLabelPolicy), catCfg.FallbackLabel, f.logger)
	if err != nil {
		return nil, err
	}

	return core.NewCategorizer(
		llmClient,
		policy,
		core.NewPromptBuilder(utils.NewTextProcessor(f.logger), pipelineCfg.SnippetLimit),
		f.logger,
		core.CategorizerOptions{
			Labels:              specs,
			ExtractEmbeddedJSON: catCfg.ExtractEmbeddedJSON,
		},
	), nil
}

// CreateTriageService creates the fetch, categorize and store pipeline
func (f *TriageFactory) CreateTriageService(categorizer *core.Categorizer, store core.ResultStore) (*core.TriageService, error) {
	pipelineCfg, err := f.cfg.GetPipeline()
	if err != nil {
		return nil, err
	}
	storeCfg, err := f.cfg.GetStore()
	if err != nil {
		return nil, err
	}
	gmailCfg := f.cfg.GetGmail()

	return core.NewTriageService(
		core.NewFetchAggregator(f.logger, gmailCfg.MaxMessages, gmailCfg.FetchWorkers),
		categorizer,
		store,
		f.logger,
		pipelineCfg.Timeout,
		storeCfg.TTL,
	), nil
}

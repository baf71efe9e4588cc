package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"legacyshift/internal/llm"
	"legacyshift/internal/types"
)

// ErrMergePathMismatch rejects a merged file whose path differs from the
// duplicates it was built from.
var ErrMergePathMismatch = errors.New("merged file path does not match duplicates")

// Models are the two backend tiers. Fast serves the cheap structural stages;
// Reasoning serves context extraction and code transformation.
type Models struct {
	Fast      llm.LLMClient
	Reasoning llm.LLMClient
}

// Options tune every stage built by NewRegistry. Zero values pick production
// defaults.
type Options struct {
	Logger *zap.Logger
	Sleep  Sleeper
	Jitter Jitter
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Sleep == nil {
		o.Sleep = SleepContext
	}
	if o.Jitter == nil {
		o.Jitter = RandomJitter
	}
	return o
}

// Clients is the family-specific set of stage clients one job uses.
type Clients struct {
	Family       types.Family
	Instructions Instructions

	Grouper   Caller[types.GroupingRequest, types.GroupingResponse]
	Context   Caller[types.ContextRequest, types.ContextResponse]
	Transform Caller[types.TransformRequest, types.TransformResponse]
	TestGen   Caller[types.TestGenRequest, types.TestGenResponse]
	Scaffold  Caller[types.ScaffoldRequest, types.ScaffoldResponse]
	Merge     Caller[types.MergeRequest, types.MergeResponse]
}

func newStage[Req, Resp any](
	family types.Family,
	stage types.Stage,
	agent string,
	instructions string,
	client llm.LLMClient,
	opts Options,
	check func(Req, *Resp) error,
) *Stage[Req, Resp] {
	return &Stage[Req, Resp]{
		agent:        family.DisplayName() + agent,
		stage:        stage,
		family:       family,
		instructions: instructions,
		llm:          client,
		log:          opts.Logger,
		sleep:        opts.Sleep,
		jitter:       opts.Jitter,
		check:        check,
	}
}

// NewClients builds the six stage clients for family.
func NewClients(family types.Family, models Models, opts Options) (*Clients, error) {
	p, ok := profiles[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFamily, family)
	}
	if models.Fast == nil || models.Reasoning == nil {
		return nil, errors.New("pipeline: both model tiers are required")
	}
	ins, err := renderInstructions(p)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Clients{
		Family:       family,
		Instructions: ins,
		Grouper: newStage[types.GroupingRequest, types.GroupingResponse](
			family, types.StageGrouping, "FileGrouper", ins.Grouping, models.Fast, opts, nil),
		Context: newStage[types.ContextRequest, types.ContextResponse](
			family, types.StageContext, "ContextExtractor", ins.Context, models.Reasoning, opts, nil),
		Transform: newStage[types.TransformRequest, types.TransformResponse](
			family, types.StageTransform, "FileConverter", ins.Transform, models.Reasoning, opts, nil),
		TestGen: newStage[types.TestGenRequest, types.TestGenResponse](
			family, types.StageTestGen, "TestGenerator", ins.TestGen, models.Fast, opts, nil),
		Scaffold: newStage[types.ScaffoldRequest, types.ScaffoldResponse](
			family, types.StageScaffold, "Scaffold", ins.Scaffold, models.Fast, opts, nil),
		Merge: newStage[types.MergeRequest, types.MergeResponse](
			family, types.StageMerge, "CodeMerger", ins.Merge, models.Fast, opts, checkMerge),
	}, nil
}

func checkMerge(req types.MergeRequest, resp *types.MergeResponse) error {
	if len(req.Duplicates) == 0 {
		return nil
	}
	if want := req.Duplicates[0].Path; resp.MergedFile.Path != want {
		return fmt.Errorf("%w: got %q, want %q", ErrMergePathMismatch, resp.MergedFile.Path, want)
	}
	return nil
}

// Registry resolves a family to its stage clients. It is built once at
// startup and read concurrently afterwards.
type Registry struct {
	byFamily map[types.Family]*Clients
}

// NewRegistry builds clients for every supported family.
func NewRegistry(models Models, opts Options) (*Registry, error) {
	r := &Registry{byFamily: make(map[types.Family]*Clients, len(profiles))}
	for _, f := range types.Families() {
		c, err := NewClients(f, models, opts)
		if err != nil {
			return nil, err
		}
		r.byFamily[f] = c
	}
	return r, nil
}

// For returns the clients of family or ErrUnknownFamily.
func (r *Registry) For(family types.Family) (*Clients, error) {
	c, ok := r.byFamily[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFamily, family)
	}
	return c, nil
}

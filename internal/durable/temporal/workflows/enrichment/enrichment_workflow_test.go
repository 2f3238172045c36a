package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/memory"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	enrichmentactivities "github.com/Apurer/portrait-customizer/internal/platform/temporal/activities/enrichment"
)

type fakeDescriptions struct {
	mu          sync.Mutex
	description string
	describeErr error
	saved       map[string]string
}

func (f *fakeDescriptions) Describe(context.Context, []byte, string, string) (string, error) {
	return f.description, f.describeErr
}

func (f *fakeDescriptions) SaveDescription(_ context.Context, _ custtypes.Credentials, variationID, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[variationID] = description
	return nil
}

func newEnv(t *testing.T, descriptions *fakeDescriptions, history *memory.GenerationLog) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := enrichmentactivities.NewActivities(application.NewEnricher(descriptions, history))
	env.RegisterActivityWithOptions(acts.Describe, activity.RegisterOptions{Name: enrichmentactivities.DescribeActivityName})
	env.RegisterActivityWithOptions(acts.Persist, activity.RegisterOptions{Name: enrichmentactivities.PersistActivityName})
	return env
}

func input() custtypes.EnrichmentInput {
	return custtypes.EnrichmentInput{
		GenerationID: "gen-1",
		SessionID:    "sess-1",
		VariationIDs: []string{"v1", "v2"},
		ImageData:    []byte{1, 2, 3},
		Filename:     "v1.jpg",
		BreedName:    "Poodle",
	}
}

func TestWorkflow_DescribesAndPersists(t *testing.T) {
	descriptions := &fakeDescriptions{description: "  A curly poodle "}
	history := memory.NewGenerationLog()
	_, err := history.Save(context.Background(), &domain.GenerationRecord{ID: "gen-1", VariationIDs: []string{"v1", "v2"}})
	require.NoError(t, err)

	env := newEnv(t, descriptions, history)
	env.ExecuteWorkflow(Workflow, WorkflowInput{Enrichment: input(), TraceID: "trace-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result custtypes.EnrichmentResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "A curly poodle", result.Description)
	require.Equal(t, map[string]string{"v1": "A curly poodle", "v2": "A curly poodle"}, descriptions.saved)

	stored, err := history.GetByID(context.Background(), "gen-1")
	require.NoError(t, err)
	require.Equal(t, "A curly poodle", stored.Entity.Description)
}

func TestWorkflow_EmptyDescriptionSkipsPersist(t *testing.T) {
	descriptions := &fakeDescriptions{}
	env := newEnv(t, descriptions, memory.NewGenerationLog())
	env.ExecuteWorkflow(Workflow, WorkflowInput{Enrichment: input()})

	require.NoError(t, env.GetWorkflowError())
	require.Empty(t, descriptions.saved)
}

func TestWorkflow_DescribeFailureFailsWorkflow(t *testing.T) {
	descriptions := &fakeDescriptions{describeErr: errors.New("vision model down")}
	env := newEnv(t, descriptions, memory.NewGenerationLog())
	env.ExecuteWorkflow(Workflow, WorkflowInput{Enrichment: input()})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Empty(t, descriptions.saved)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/secfilingflow/internal/gcp"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/googleapis/gax-go/v2"
)

// SessionNotifier is told about every durably committed session.
type SessionNotifier interface {
	SessionCommitted(ctx context.Context, event models.SessionCommittedEvent) error
}

// executionCreator is the part of the Workflows Executions client we use.
type executionCreator interface {
	CreateExecution(ctx context.Context, req *executionspb.CreateExecutionRequest, opts ...gax.CallOption) (*executionspb.Execution, error)
}

// WorkflowNotifier starts a Cloud Workflows execution per committed session,
// passing the session event as the execution argument.
type WorkflowNotifier struct {
	client executionCreator
	parent string
}

// NewWorkflowNotifier creates a notifier for the given workflow.
func NewWorkflowNotifier(client executionCreator, projectID, location, workflowID string) (*WorkflowNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("workflows executions client must be provided")
	}
	if projectID == "" || location == "" || workflowID == "" {
		return nil, fmt.Errorf("project, location and workflow id are required")
	}
	return &WorkflowNotifier{
		client: client,
		parent: gcp.WorkflowParent(projectID, location, workflowID),
	}, nil
}

// SessionCommitted triggers the workflow.
func (n *WorkflowNotifier) SessionCommitted(ctx context.Context, event models.SessionCommittedEvent) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: n.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := n.client.CreateExecution(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	slog.Info("Workflow execution started.", "execution", exec.GetName(), "filingId", event.FilingID, "sessionId", event.SessionID)
	return nil
}

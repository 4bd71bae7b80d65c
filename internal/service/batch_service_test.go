package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eduleaf/gradeflow-api/internal/dto"
)

func TestBatchServiceIsolatesFailures(t *testing.T) {
	grader := &fakeGrader{
		payload: map[string]any{
			"rubric_scores": []any{
				map[string]any{"name": "Completeness", "score": 0.8},
			},
		},
		reference: "the reference",
		errOn:     "broken answer",
	}
	snapshots := &fakeSnapshots{}
	svc := NewBatchService(grader, snapshots, testValidator(), 4, 60, zerolog.Nop())

	review, err := svc.GradeBatch(context.Background(), dto.BatchGradeRequest{
		Question: "Q",
		Rubric:   "Completeness",
		Submissions: []dto.BatchSubmission{
			{File: "alice.txt", Text: "a fine answer"},
			{File: "bob.txt", Text: "broken answer"},
			{File: "carol.txt", Err: "could not decode upload"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, review.BatchID)

	batch := review.Result
	require.Equal(t, 3, batch.Count)
	require.Equal(t, 1, batch.SuccessCount)
	require.Equal(t, 2, batch.FailCount)
	require.Equal(t, []string{"Completeness"}, batch.RubricUsed)

	require.Len(t, batch.Items, 3)
	require.Equal(t, []string{"0001", "0002", "0003"}, []string{batch.Items[0].ID, batch.Items[1].ID, batch.Items[2].ID})

	first := batch.Items[0]
	require.True(t, first.OK)
	require.NotNil(t, first.Result)
	require.Equal(t, 80.0, first.Result.OverallScore)
	// the shared reference lives on the batch, not on each item
	require.Nil(t, first.Result.ReferenceAnswer)

	second := batch.Items[1]
	require.False(t, second.OK)
	require.NotNil(t, second.Error)
	require.Equal(t, "model unavailable", *second.Error)

	third := batch.Items[2]
	require.False(t, third.OK)
	require.NotNil(t, third.Error)
	require.Equal(t, "could not decode upload", *third.Error)

	require.True(t, batch.ReferenceGenerated)
	require.Equal(t, "the reference", batch.ReferenceAnswer)

	require.NotNil(t, batch.Summary)
	require.Equal(t, 80.0, batch.Summary.Avg)
	require.Equal(t, 100.0, batch.Summary.PassRate)

	stored, err := snapshots.GetBatch(context.Background(), review.BatchID)
	require.NoError(t, err)
	require.Equal(t, batch, stored)
}

func TestBatchServiceEmptySubmissionFails(t *testing.T) {
	grader := &fakeGrader{
		payload:   map[string]any{"rubric_scores": []any{map[string]any{"name": "A", "score": 1.0}}},
		reference: "ref",
	}
	svc := NewBatchService(grader, &fakeSnapshots{}, testValidator(), 2, 60, zerolog.Nop())

	review, err := svc.GradeBatch(context.Background(), dto.BatchGradeRequest{
		Question: "Q",
		Submissions: []dto.BatchSubmission{
			{File: "blank.txt", Text: "   "},
		},
	})
	require.NoError(t, err)

	item := review.Result.Items[0]
	require.False(t, item.OK)
	require.NotNil(t, item.Error)
	require.Equal(t, "empty submission", *item.Error)
}

func TestBatchServiceValidation(t *testing.T) {
	svc := NewBatchService(&fakeGrader{}, &fakeSnapshots{}, testValidator(), 2, 60, zerolog.Nop())

	_, err := svc.GradeBatch(context.Background(), dto.BatchGradeRequest{Question: "Q"})
	require.Error(t, err)
}

func TestBatchServiceThresholdFallsBackToDefault(t *testing.T) {
	grader := &fakeGrader{
		payload: map[string]any{
			"rubric_scores": []any{map[string]any{"name": "A", "score": 0.5}},
		},
		reference: "ref",
	}
	svc := NewBatchService(grader, &fakeSnapshots{}, testValidator(), 2, 60, zerolog.Nop())

	review, err := svc.GradeBatch(context.Background(), dto.BatchGradeRequest{
		Question:    "Q",
		Submissions: []dto.BatchSubmission{{File: "a.txt", Text: "answer"}},
	})
	require.NoError(t, err)

	// score 50 against the default threshold of 60
	require.Equal(t, 0.0, review.Result.Summary.PassRate)
}

func TestBatchServiceNoGrader(t *testing.T) {
	svc := NewBatchService(nil, &fakeSnapshots{}, testValidator(), 2, 60, zerolog.Nop())

	_, err := svc.GradeBatch(context.Background(), dto.BatchGradeRequest{
		Question:    "Q",
		Submissions: []dto.BatchSubmission{{File: "a.txt", Text: "answer"}},
	})
	require.ErrorIs(t, err, ErrAIUnavailable)
}

package services

import (
	"math"
	"testing"

	"task-manager/backend/models"
)

func checklist(total, completed int) []models.TodoItem {
	items := make([]models.TodoItem, total)
	for i := range items {
		items[i] = models.TodoItem{Text: "item", Completed: i < completed}
	}
	return items
}

func TestComputeChecklistProgressExhaustive(t *testing.T) {
	for total := 0; total <= 4; total++ {
		for completed := 0; completed <= total; completed++ {
			items := checklist(total, completed)
			got := ComputeChecklistProgress(items)

			want := 0
			if total > 0 {
				want = int(math.Round(float64(completed) / float64(total) * 100))
			}
			if got != want {
				t.Errorf("progress for %d/%d completed = %d, want %d", completed, total, got, want)
			}

			status := StatusForProgress(got)
			switch {
			case got == 100 && status != models.StatusCompleted:
				t.Errorf("status for progress 100 = %q, want %q", status, models.StatusCompleted)
			case got > 0 && got < 100 && status != models.StatusInProgress:
				t.Errorf("status for progress %d = %q, want %q", got, status, models.StatusInProgress)
			case got == 0 && status != models.StatusPending:
				t.Errorf("status for progress 0 = %q, want %q", status, models.StatusPending)
			}
		}
	}
}

func TestApplyChecklistTwoOfThree(t *testing.T) {
	task := models.Task{Status: models.StatusPending}
	ApplyChecklist(&task, []models.TodoItem{
		{Text: "a", Completed: true},
		{Text: "b", Completed: true},
		{Text: "c", Completed: false},
	})

	if task.Progress != 67 {
		t.Errorf("progress = %d, want 67", task.Progress)
	}
	if task.Status != models.StatusInProgress {
		t.Errorf("status = %q, want %q", task.Status, models.StatusInProgress)
	}
}

func TestApplyChecklistEmpty(t *testing.T) {
	task := models.Task{Status: models.StatusCompleted, Progress: 100}
	ApplyChecklist(&task, []models.TodoItem{})

	if task.Progress != 0 {
		t.Errorf("progress = %d, want 0", task.Progress)
	}
	if task.Status != models.StatusPending {
		t.Errorf("status = %q, want %q", task.Status, models.StatusPending)
	}
}

func TestApplyStatusCompletedForcesChecklist(t *testing.T) {
	task := models.Task{
		Status:        models.StatusInProgress,
		Progress:      33,
		TodoChecklist: checklist(3, 1),
	}

	applyStatus(&task, models.StatusCompleted)

	if task.Progress != 100 {
		t.Errorf("progress = %d, want 100", task.Progress)
	}
	for i, item := range task.TodoChecklist {
		if !item.Completed {
			t.Errorf("checklist item %d not completed after forcing Completed status", i)
		}
		if item.Text != "item" {
			t.Errorf("checklist item %d text changed to %q", i, item.Text)
		}
	}
}

func TestApplyStatusPartialDoesNotRecomputeProgress(t *testing.T) {
	task := models.Task{
		Status:        models.StatusInProgress,
		Progress:      33,
		TodoChecklist: checklist(3, 1),
	}

	applyStatus(&task, models.StatusPending)

	if task.Status != models.StatusPending {
		t.Errorf("status = %q, want %q", task.Status, models.StatusPending)
	}
	if task.Progress != 33 {
		t.Errorf("progress = %d, want 33 (retained, not recomputed)", task.Progress)
	}
}

func TestApplyStatusEmptyRetainsCurrent(t *testing.T) {
	task := models.Task{Status: models.StatusInProgress, Progress: 50}

	applyStatus(&task, "")

	if task.Status != models.StatusInProgress {
		t.Errorf("status = %q, want %q", task.Status, models.StatusInProgress)
	}
}

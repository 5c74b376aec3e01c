package pipeline

import (
	"fmt"
	"io"
	"sort"

	"github.com/fightmetrics/predict-api/internal/models"
)

// RenderSummary writes the per-model accuracy table of a run in a
// fixed model-name order.
func RenderSummary(w io.Writer, report *models.EvaluationReport) {
	fmt.Fprintf(w, "\n--- Evaluation Summary (run %s) ---\n", report.RunID)
	fmt.Fprintf(w, "Test events: %v\n", report.TestEvents)
	fmt.Fprintf(w, "%-22s | %-9s | %-22s | %s\n", "Model", "Accuracy", "Evaluated / Eligible", "Status")
	fmt.Fprintln(w, "--------------------------------------------------------------------------")

	names := make([]string, 0, len(report.Models))
	for name := range report.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mr := report.Models[name]
		fmt.Fprintf(w, "%-22s | %7.2f%% | %10d / %-9d | %s\n",
			name, mr.Accuracy, mr.Evaluated, mr.Eligible, mr.Status)
	}
	fmt.Fprintln(w, "--------------------------------------------------------------------------")
}

// RenderFolds writes the cross-validation accuracy per fold and the
// per-model mean across folds.
func RenderFolds(w io.Writer, folds []FoldResult) {
	totals := make(map[string]float64)
	for _, fr := range folds {
		fmt.Fprintf(w, "\nFold %d (test events %v)\n", fr.Fold, fr.TestEvents)
		names := make([]string, 0, len(fr.Accuracy))
		for name := range fr.Accuracy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-22s %7.2f%% on %d fights\n", name, fr.Accuracy[name], fr.Evaluated[name])
			totals[name] += fr.Accuracy[name]
		}
	}
	if len(folds) > 0 {
		fmt.Fprintln(w, "\nMean accuracy across folds:")
		names := make([]string, 0, len(totals))
		for name := range totals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-22s %7.2f%%\n", name, totals[name]/float64(len(folds)))
		}
	}
}

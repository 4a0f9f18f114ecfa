package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const runIndexFile = "run_index.json"

// RunArtifacts carries one run; Histories holds the per-tick fitness of each
// sample.
type RunArtifacts struct {
	RunID      string
	Experiment any
	Summary    Summary
	Histories  [][]float64
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Experiment   string  `json:"experiment"`
	Evaluation   string  `json:"evaluation"`
	Samples      int     `json:"samples"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Best         float64 `json:"best"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteRunArtifacts lays a run out as baseDir/<run id>/ with the experiment,
// the summary and one fitness CSV per sample.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "experiment.json"), artifacts.Experiment); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}
	for sample, history := range artifacts.Histories {
		if err := WriteFitnessHistory(runDir, sample, history); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

func historyFile(sample int) string {
	return fmt.Sprintf("fitness_sample_%d.csv", sample)
}

func WriteFitnessHistory(runDir string, sample int, history []float64) error {
	file, err := os.Create(filepath.Join(runDir, historyFile(sample)))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"tick", "fitness"}); err != nil {
		return err
	}
	for i, v := range history {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(v, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadFitnessHistory(baseDir, runID string, sample int) ([]float64, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, historyFile(sample)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}

	history := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("fitness history row must have 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		history = append(history, value)
	}
	return history, true, nil
}

func ReadSummary(baseDir, runID string) (Summary, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "summary.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, false, nil
		}
		return Summary{}, false, err
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}, false, err
	}
	return summary, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns entries newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

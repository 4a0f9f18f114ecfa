package storage

import (
	"encoding/json"
	"errors"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return RunRecord{}, err
	}
	if run.SchemaVersion != CurrentSchemaVersion || run.CodecVersion != CurrentCodecVersion {
		return RunRecord{}, ErrVersionMismatch
	}
	return run, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// stamp fills the version fields of records saved without them.
func stamp(run RunRecord) RunRecord {
	if run.SchemaVersion == 0 {
		run.SchemaVersion = CurrentSchemaVersion
	}
	if run.CodecVersion == 0 {
		run.CodecVersion = CurrentCodecVersion
	}
	return run
}

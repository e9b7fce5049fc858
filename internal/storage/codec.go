package storage

import (
	"encoding/json"
	"errors"

	"credence/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeSessionMeta(m model.SessionMeta) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeSessionMeta(data []byte) (model.SessionMeta, error) {
	var meta model.SessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return model.SessionMeta{}, err
	}
	if err := checkVersion(meta.VersionedRecord); err != nil {
		return model.SessionMeta{}, err
	}
	return meta, nil
}

func EncodeEpisode(e model.EpisodeArchive) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEpisode(data []byte) (model.EpisodeArchive, error) {
	var episode model.EpisodeArchive
	if err := json.Unmarshal(data, &episode); err != nil {
		return model.EpisodeArchive{}, err
	}
	if err := checkVersion(episode.VersionedRecord); err != nil {
		return model.EpisodeArchive{}, err
	}
	return episode, nil
}

func EncodePolicyProbes(p []model.PolicyProbe) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePolicyProbes(data []byte) ([]model.PolicyProbe, error) {
	var probes []model.PolicyProbe
	if err := json.Unmarshal(data, &probes); err != nil {
		return nil, err
	}
	return probes, nil
}

func EncodeRewardHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeRewardHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

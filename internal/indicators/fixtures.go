package indicators

import (
	"embed"
	"encoding/json"
	"fmt"
)

// Sample API responses for Chattisgarh, used by tests and by demo mode.
//
//go:embed fixtures/*.json
var fixtureFS embed.FS

// FixtureJSON returns the raw API response stored under name ("state",
// "district" or "block").
func FixtureJSON(name string) ([]byte, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	return data, nil
}

func loadFixture[T any](name string) (T, error) {
	var env struct {
		Data T `json:"data"`
	}
	raw, err := FixtureJSON(name)
	if err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env.Data, fmt.Errorf("failed to decode fixture %s: %w", name, err)
	}
	return env.Data, nil
}

// MockStateDataset is a district-wise response with thirteen districts, one
// of them without data, plus the state aggregate row.
func MockStateDataset() StateDataset {
	ds, err := loadFixture[StateDataset]("state")
	if err != nil {
		panic(err)
	}
	return ds
}

// MockDistrictDataset is the block breakdown of Raipur.
func MockDistrictDataset() DistrictDataset {
	ds, err := loadFixture[DistrictDataset]("district")
	if err != nil {
		panic(err)
	}
	return ds
}

// MockBlockDataset is a handful of schools of one Raipur block.
func MockBlockDataset() BlockDataset {
	ds, err := loadFixture[BlockDataset]("block")
	if err != nil {
		panic(err)
	}
	return ds
}

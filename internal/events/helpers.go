package events

import (
	"encoding/json"
	"fmt"
)

func (e *SimEvent) setData(data interface{}) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return err
	}
	e.Data = dataMap
	return nil
}

// GetEnvironmentFaultData retrieves EnvironmentFaultData from the Data field.
func (e *SimEvent) GetEnvironmentFaultData() (*EnvironmentFaultData, error) {
	var data EnvironmentFaultData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse EnvironmentFaultData: %w", err)
	}
	return &data, nil
}

// GetPhaseChangedData retrieves PhaseChangedData from the Data field.
func (e *SimEvent) GetPhaseChangedData() (*PhaseChangedData, error) {
	var data PhaseChangedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse PhaseChangedData: %w", err)
	}
	return &data, nil
}

// GetPlantStatusChangedData retrieves PlantStatusChangedData from the Data field.
func (e *SimEvent) GetPlantStatusChangedData() (*PlantStatusChangedData, error) {
	var data PlantStatusChangedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse PlantStatusChangedData: %w", err)
	}
	return &data, nil
}

// GetGrowthCapReachedData retrieves GrowthCapReachedData from the Data field.
func (e *SimEvent) GetGrowthCapReachedData() (*GrowthCapReachedData, error) {
	var data GrowthCapReachedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse GrowthCapReachedData: %w", err)
	}
	return &data, nil
}

// GetRunStartedData retrieves RunStartedData from the Data field.
func (e *SimEvent) GetRunStartedData() (*RunStartedData, error) {
	var data RunStartedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse RunStartedData: %w", err)
	}
	return &data, nil
}

// structToMap converts a struct to a map[string]interface{} using JSON marshaling.
func structToMap(data interface{}) (map[string]interface{}, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapToStruct converts a map[string]interface{} to a struct using JSON unmarshaling.
func mapToStruct(dataMap map[string]interface{}, target interface{}) error {
	bytes, err := json.Marshal(dataMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}

package storage

import "os"

// Mode selects the backing store
type Mode string

const (
	ModeMemory Mode = "memory"
	ModeLocal  Mode = "local" // DynamoDB Local
	ModeAWS    Mode = "aws"
)

// DynamoConfig holds store configuration
type DynamoConfig struct {
	Mode             Mode
	Endpoint         string // for local mode
	Region           string
	CallRecordsTable string
	DirectoryTable   string
	SeedFixtures     bool
}

// LoadDynamoConfig loads store config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := Mode(getEnv("STORE_MODE", string(ModeMemory)))
	if mode != ModeLocal && mode != ModeAWS {
		mode = ModeMemory
	}

	return DynamoConfig{
		Mode:             mode,
		Endpoint:         getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:           getEnv("DYNAMO_REGION", "eu-central-1"),
		CallRecordsTable: getEnv("DYNAMO_CALL_RECORDS_TABLE", "callcenter-call-records"),
		DirectoryTable:   getEnv("DYNAMO_DIRECTORY_TABLE", "callcenter-directory"),
		SeedFixtures:     getEnv("SEED_FIXTURES", defaultSeed(mode)) == "true",
	}
}

// defaultSeed only seeds the in-memory store unless SEED_FIXTURES says otherwise
func defaultSeed(mode Mode) string {
	if mode == ModeMemory {
		return "true"
	}
	return "false"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

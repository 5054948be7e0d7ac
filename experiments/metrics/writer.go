package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentConfig identifies one competitor of an experiment.
type AgentConfig struct {
	ID         int    `yaml:"id"`
	Difficulty string `yaml:"difficulty"`
	Iterations int    `yaml:"iterations,omitempty"`
	Goroutines int    `yaml:"goroutines,omitempty"`
	Cutoff     int    `yaml:"cutoff,omitempty"`
}

// Setup describes how an experiment was run.
type Setup struct {
	Name     string        `yaml:"name"`
	Games    int           `yaml:"games_per_matchup"`
	MaxTurns int           `yaml:"max_turns"`
	Seed     uint64        `yaml:"seed"`
	Agents   []AgentConfig `yaml:"agents"`
	MatchUps []MatchUp     `yaml:"matchups"`
}

// MatchUp seats two AgentConfig IDs.
type MatchUp struct {
	Player1 int `yaml:"player1"`
	Player2 int `yaml:"player2"`
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	dir string
}

// NewWriter creates baseDir/name/<timestamp> for one experiment's files.
func NewWriter(baseDir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	dir := filepath.Join(baseDir, name, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) WriteSetup(setup Setup) error {
	out, err := yaml.Marshal(setup)
	if err != nil {
		return fmt.Errorf("failed to encode setup: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "setup.yaml"), out, 0644); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

// ReadSetup loads a setup file written by WriteSetup.
func ReadSetup(path string) (Setup, error) {
	var setup Setup
	in, err := os.ReadFile(path)
	if err != nil {
		return setup, fmt.Errorf("failed to read setup: %w", err)
	}
	if err := yaml.Unmarshal(in, &setup); err != nil {
		return setup, fmt.Errorf("failed to decode setup: %w", err)
	}
	return setup, nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "difficulty", "iterations", "goroutines", "cutoff"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Difficulty,
			strconv.Itoa(config.Iterations),
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Cutoff),
		})
	}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "dice", "agent", "duration", "iterations", "episodes", "full_playouts", "children"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Dice),
			record.Agent,
			record.Duration.String(),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Children),
		})
	}
	return w.writeCSV("move_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

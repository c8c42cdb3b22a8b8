package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a string list as a JSON array in a text column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// QuestionSet is a row of question_sets.
type QuestionSet struct {
	ID               string    `db:"id"`
	SessionID        string    `db:"session_id"`
	GenerationMethod string    `db:"generation_method"`
	Requirements     string    `db:"requirements"`
	QuestionCount    int       `db:"question_count"`
	TotalMarks       int       `db:"total_marks"`
	CreatedAt        time.Time `db:"created_at"`
}

// Question is a row of questions. Position keeps the generation order.
type Question struct {
	ID            string         `db:"id"`
	SetID         string         `db:"set_id"`
	Position      int            `db:"position"`
	Type          string         `db:"question_type"`
	BloomLevel    string         `db:"bloom_level"`
	BloomCode     string         `db:"bloom_code"`
	Difficulty    string         `db:"difficulty"`
	Content       string         `db:"content"`
	Options       StringSlice    `db:"options"`
	CorrectAnswer sql.NullString `db:"correct_answer"`
	Explanation   sql.NullString `db:"explanation"`
	Answer        string         `db:"answer"`
	Marks         int            `db:"marks"`
	Source        string         `db:"source"`
}

// ExamPaper is a row of exam_papers. The paper itself is stored as JSON.
type ExamPaper struct {
	ID         string    `db:"id"`
	SessionID  string    `db:"session_id"`
	Title      string    `db:"title"`
	TotalMarks int       `db:"total_marks"`
	Paper      string    `db:"paper"`
	CreatedAt  time.Time `db:"created_at"`
}

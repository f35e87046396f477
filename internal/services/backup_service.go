package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/clock"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"github.com/xuri/excelize/v2"
)

var ErrInvalidDateRange = errors.New("invalid date range")

const exportSheet = "Tasks"

// exportColumns defines header order and widths for the xlsx export.
var exportColumns = []struct {
	header string
	width  float64
}{
	{"ID", 8},
	{"Title", 32},
	{"Description", 48},
	{"Status", 14},
	{"Author", 16},
	{"Team", 8},
	{"Project", 24},
	{"Created At", 18},
	{"Due Date", 18},
	{"Co-Work", 10},
	{"Archived", 10},
}

// BackupService selects tasks by creation date range for admin export or
// bulk deletion. Export and delete are two independent calls; each computes
// its own selection with the same predicate, so their counts match when no
// concurrent writer interferes.
type BackupService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewBackupService creates a new BackupService
func NewBackupService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *BackupService {
	return &BackupService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ParseRange parses startDate/endDate (YYYY-MM-DD, interpreted in UTC+9)
// into the half-open instant window [start of startDate, end of endDate).
func (s *BackupService) ParseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := clock.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	end, err := clock.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	// End is inclusive of the whole end day.
	return start, end.Add(24 * time.Hour), nil
}

// Collect returns every task created in [from, to), regardless of co-work or
// archive state.
func (s *BackupService) Collect(from, to time.Time) ([]models.Task, error) {
	return s.taskRepo.List(repository.TaskFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
}

// ExportXLSX renders the collected tasks as a spreadsheet, one row per task,
// timestamps in UTC+9.
func (s *BackupService) ExportXLSX(tasks []models.Task) (*excelize.File, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authors: %w", err)
	}
	byID := make(map[uint64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, col := range exportColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, col.width); err != nil {
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, col.header); err != nil {
			return nil, err
		}
	}

	for rowIdx, task := range tasks {
		author := task.Username
		team := ""
		if u, ok := byID[task.UserID]; ok {
			author = u.Username
			team = string(u.Team)
		}
		if author == "" {
			author = unknownOwner
		}

		description := ""
		if task.Description != nil {
			description = *task.Description
		}
		dueDate := ""
		if task.DueDate != nil {
			dueDate = clock.FormatTimestamp(*task.DueDate)
		}

		values := []interface{}{
			task.ID,
			task.Title,
			description,
			string(task.Status),
			author,
			team,
			task.ProjectName,
			clock.FormatTimestamp(task.CreatedAt),
			dueDate,
			task.IsCoWork,
			task.IsArchived,
		}

		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// CountRange counts tasks created in [from, to).
func (s *BackupService) CountRange(from, to time.Time) (int64, error) {
	return s.taskRepo.CountRange(from, to)
}

// DeleteRange deletes every task created in [from, to) and reports the
// count. Selection and deletion are not wrapped in one isolation scope:
// tasks created concurrently during the call are simply not part of the set.
func (s *BackupService) DeleteRange(from, to time.Time) (int64, error) {
	count, err := s.taskRepo.DeleteRange(from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return count, nil
}

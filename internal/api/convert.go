package api

import (
	"transcribr/internal/jobs"
)

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) Job {
	if job == nil {
		return Job{}
	}

	dto := Job{
		ID:            job.ID,
		Status:        string(job.Status),
		VideoFilename: job.VideoFilename,
		AudioFilename: job.AudioFilename,
		ErrorMessage:  job.ErrorMessage,
		HasTranscript: job.HasTranscript(),
		HasArchive:    job.ArchivePath != "",
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if len(job.Screenshots) > 0 {
		dto.Screenshots = make([]Screenshot, 0, len(job.Screenshots))
		for _, shot := range job.Screenshots {
			dto.Screenshots = append(dto.Screenshots, Screenshot{
				Filename: shot.Filename,
				Seconds:  shot.Seconds,
			})
		}
	}
	return dto
}

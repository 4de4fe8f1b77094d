package service

import (
	"fmt"
	"strings"

	apperrors "pixelgram/internal/errors"
	"pixelgram/internal/models"
)

// User-facing message texts.
const (
	msgSingleProcessing = "Received 1 file, uploading..."
	msgAlbumPrompt      = "Bundle these files into a shared album?"
	msgAlbumBuilding    = "Building the album link..."
	msgAlbumToast       = "Album created!"
	msgCancelToast      = "Cancelled."
	msgCancelledNotice  = "Album creation cancelled."
	msgBatchExpired     = "This batch has expired or was already handled."
)

// LinkBuilder turns opaque store identifiers into shareable links.
type LinkBuilder interface {
	FileURL(id string) string
}

func multiProcessingText(count int) string {
	return fmt.Sprintf("Received %d files, uploading concurrently...", count)
}

func singleResultText(outcome models.UploadOutcome, links LinkBuilder) string {
	if outcome.Succeeded() {
		return fmt.Sprintf("✅ Upload complete!\n\n🔗 Link: %s", links.FileURL(outcome.FileID))
	}
	return fmt.Sprintf("❌ Upload failed!\n\n%s", failureLine(outcome))
}

// batchReportText composes the combined multi-file report: a K/N headline,
// one link line per success and one reason line per failure, both in
// original submission order.
func batchReportText(outcomes []models.UploadOutcome, links LinkBuilder) string {
	var successes, failures []string
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			successes = append(successes, fmt.Sprintf("🔗 %s", links.FileURL(outcome.FileID)))
		} else {
			failures = append(failures, failureLine(outcome))
		}
	}

	parts := []string{fmt.Sprintf("✅ Uploaded %d/%d files.", len(successes), len(outcomes))}
	if len(successes) > 0 {
		parts = append(parts, "Links:\n"+strings.Join(successes, "\n"))
	}
	if len(failures) > 0 {
		parts = append(parts, "❌ Failed files:\n"+strings.Join(failures, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func failureLine(outcome models.UploadOutcome) string {
	return fmt.Sprintf("📄 Message %d: %s (%s)",
		outcome.File.MessageID,
		apperrors.GetUserMessage(outcome.Err),
		apperrors.Category(outcome.Err),
	)
}

func albumSuccessText(link string) string {
	return fmt.Sprintf("✅ Album created!\n\n🔗 Your album link: %s", link)
}

func albumFailureText(err error) string {
	return fmt.Sprintf("❌ Album creation failed: %s (%s)", apperrors.GetUserMessage(err), apperrors.Category(err))
}

// cancelledText strips the trailing prompt paragraph from the prior report
// and appends a cancelled notice, preserving the earlier result lines.
func cancelledText(prior string) string {
	parts := strings.Split(prior, "\n\n")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\n\n") + "\n\n" + msgCancelledNotice
}

package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

const (
	defaultPoints  = 100
	defaultComment = "Excellent work!"
)

const (
	needIdentityReply    = "I don't know who you are yet, so I can't do that. Please identify yourself first."
	selfRecognitionReply = "You can't recognize yourself."
	noTargetReply        = "I couldn't find that person in the roster. Who would you like to recognize?"
	noUserIDReply        = "Which user id should I look up?"
)

var (
	recognizeRe = regexp.MustCompile(`\b(recognize|recognise|give)\b`)
	numberRe    = regexp.MustCompile(`\b\d+\b`)
)

// historyPhrases trigger the recognition-history intent.
var historyPhrases = []string{
	"how many recognition",
	"show my recognitions",
	"received recognition",
}

// rosterPhrases trigger the roster-listing intent.
var rosterPhrases = []string{
	"get all users",
	"list users",
	"show participants",
}

// lookupPhrases trigger the single-user lookup intent.
var lookupPhrases = []string{
	"get user",
	"show user",
}

// commentConnectors are stripped from the start of the free text following
// a matched name before it becomes the recognition comment.
var commentConnectors = []string{
	"along with", "saying", "with", "for", "to", "is", "as",
}

// Detector recognizes directory-service requests: recognition, history,
// roster listing and user lookup. Anything else falls through to the
// generation pipeline.
type Detector struct {
	dir core.DirectoryService
}

func NewDetector(dir core.DirectoryService) *Detector {
	return &Detector{dir: dir}
}

// Detect reports whether raw is a directory-service request and, if so,
// the terminal reply for the turn. (false, "") means not handled.
func (d *Detector) Detect(ctx context.Context, raw string, ownerID *int64) (bool, string) {
	lower := strings.ToLower(raw)

	if loc := recognizeRe.FindStringIndex(lower); loc != nil {
		if ownerID == nil {
			return true, needIdentityReply
		}
		return true, d.handleRecognition(ctx, *ownerID, raw[loc[1]:])
	}

	if containsAny(lower, historyPhrases) {
		if ownerID == nil {
			return true, needIdentityReply
		}
		return true, d.handleHistory(ctx, *ownerID)
	}

	if containsAny(lower, rosterPhrases) {
		return true, d.handleRoster(ctx)
	}

	if containsAny(lower, lookupPhrases) {
		return true, d.handleLookup(ctx, lower)
	}

	return false, ""
}

func (d *Detector) handleRecognition(ctx context.Context, senderID int64, rest string) string {
	points := int64(defaultPoints)
	if n, ok := leadingNumber(rest); ok {
		points = n
	}

	roster, err := d.dir.ListUsers(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to fetch roster")
		return fmt.Sprintf("I couldn't reach the user directory: %v", err)
	}

	target, remainder, ok := resolveTarget(rest, roster)
	if !ok {
		return noTargetReply
	}
	if target.UserID == senderID {
		return selfRecognitionReply
	}

	comment := trimComment(remainder)
	if comment == "" {
		comment = defaultComment
	}

	result, err := d.dir.Recognize(ctx, senderID, target.Username, comment, points)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("recognition call failed")
		return fmt.Sprintf("I couldn't send that recognition: %v", err)
	}
	return result
}

func (d *Detector) handleHistory(ctx context.Context, userID int64) string {
	history, err := d.dir.GetRecognitionHistory(ctx, userID)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to fetch recognition history")
		return fmt.Sprintf("I couldn't fetch your recognition history: %v", err)
	}
	if len(history) == 0 {
		return "You haven't received any recognitions yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You have received %d recognition(s):\n", len(history))
	for _, r := range history {
		fmt.Fprintf(&sb, "- %d points from %s: %s (%s)\n",
			r.Points, r.Sender.FullName, r.Comment, r.Timestamp.Format("2006-01-02"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Detector) handleRoster(ctx context.Context) string {
	roster, err := d.dir.ListUsers(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to fetch roster")
		return fmt.Sprintf("I couldn't reach the user directory: %v", err)
	}
	if len(roster) == 0 {
		return "The roster is empty."
	}

	var sb strings.Builder
	for _, p := range roster {
		fmt.Fprintf(&sb, "%s (@%s) | Points: %d\n", p.FullName, p.Username, p.Points)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Detector) handleLookup(ctx context.Context, lower string) string {
	m := numberRe.FindString(lower)
	if m == "" {
		return noUserIDReply
	}
	id, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return noUserIDReply
	}

	user, err := d.dir.GetUser(ctx, id)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to fetch user")
		return fmt.Sprintf("I couldn't reach the user directory: %v", err)
	}
	if user == nil {
		return fmt.Sprintf("I couldn't find user %d.", id)
	}
	if user.Department == "" {
		return fmt.Sprintf("%s (@%s).", user.FullName, user.Username)
	}
	return fmt.Sprintf("%s (@%s) works in %s.", user.FullName, user.Username, user.Department)
}

// trimComment strips leading whitespace, punctuation and connector words
// from the free text following a matched name.
func trimComment(s string) string {
	s = strings.TrimLeft(s, " \t,.:;!-\"'")
	for {
		lower := strings.ToLower(s)
		trimmed := false
		for _, conn := range commentConnectors {
			if strings.HasPrefix(lower, conn+" ") {
				s = strings.TrimLeft(s[len(conn)+1:], " \t,.:;!-\"'")
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}
	return strings.TrimSpace(s)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"debatehub/models"
	"debatehub/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reaction actions and methods.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"

	MethodAdd    = "add"
	MethodRemove = "remove"
)

// Popularity deltas for the vote state machine. Switching between the two
// sets applies the removal delta and the insertion delta together.
const (
	popularityInFavor = 2
	popularityAgainst = 1
)

// DebateService implements the mutation protocol on the debate aggregate.
// Every mutation consults the moderation gate when text is involved, then
// applies a conflict-safe update to the document, then runs the
// best-effort side effects (ledger, notifications, badges).
type DebateService struct {
	debates    store.DebateStore
	categories store.CategoryStore
	censored   store.CensoredStore
	moderator  Moderator
	ledger     ActivityLedger
	notifier   Notifier
	badges     *BadgeEngine
	log        *logrus.Logger
}

// NewDebateService wires the mutation protocol to its collaborators.
func NewDebateService(
	debates store.DebateStore,
	categories store.CategoryStore,
	censored store.CensoredStore,
	moderator Moderator,
	ledger ActivityLedger,
	notifier Notifier,
	badges *BadgeEngine,
	log *logrus.Logger,
) *DebateService {
	return &DebateService{
		debates:    debates,
		categories: categories,
		censored:   censored,
		moderator:  moderator,
		ledger:     ledger,
		notifier:   notifier,
		badges:     badges,
		log:        log,
	}
}

// CreateDebateRequest carries the fields of a new debate.
type CreateDebateRequest struct {
	Title    string   `json:"nameDebate"`
	Body     string   `json:"argument"`
	Category string   `json:"category"`
	Username string   `json:"username"`
	Refs     []string `json:"refs"`
	Image    string   `json:"image"`
}

// CommentRequest carries the fields of a new comment or reply.
type CommentRequest struct {
	Username string   `json:"username"`
	Text     string   `json:"argument"`
	Refs     []string `json:"refs"`
	Image    string   `json:"image"`
}

// DebateView is the client representation of a debate, with censored
// comments filtered unless requested and the best argument attached.
type DebateView struct {
	*models.Debate
	BestArgument *models.Comment `json:"bestArgument,omitempty"`
}

// Create validates the request, gates the text, and persists the new
// debate. The owner implicitly votes InFavor and follows the debate.
func (s *DebateService) Create(ctx context.Context, req CreateDebateRequest) (*models.Debate, Effects, error) {
	var effects Effects
	if req.Title == "" || req.Body == "" || req.Category == "" || req.Username == "" {
		return nil, effects, validationErrorf("title, body, category and username are required")
	}
	if _, err := s.categories.Get(ctx, req.Category); err != nil {
		if err == store.ErrNotFound {
			return nil, effects, ErrCategoryNotFound
		}
		return nil, effects, err
	}

	moderated := s.moderator.Moderate(ctx, req.Title+"\n\n"+req.Body)
	if moderated.Decision == DecisionReject {
		return nil, effects, &ModerationRejectedError{Reason: moderated.Reason, Categories: moderated.FlaggedCategories}
	}

	debate := &models.Debate{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Body:             req.Body,
		Category:         req.Category,
		Owner:            req.Username,
		Image:            req.Image,
		Refs:             req.Refs,
		Comments:         []models.Comment{},
		PeopleInFavor:    []string{req.Username},
		PeopleAgainst:    []string{},
		Followers:        []string{req.Username},
		ModerationStatus: models.ModerationApproved,
		CreatedAt:        time.Now(),
	}
	if moderated.Decision == DecisionFlag {
		debate.ModerationStatus = models.ModerationCensored
		debate.ModerationReason = moderated.Reason
	}

	if err := s.debates.Insert(ctx, debate); err != nil {
		return nil, effects, fmt.Errorf("failed to create debate: %w", err)
	}

	if moderated.Decision == DecisionFlag {
		effects.record("censorAudit", s.auditCensored(ctx, "DEBATE", debate.ID, "", req.Title+"\n\n"+req.Body, req.Username, moderated))
	}
	effects.record("activityLedger", s.ledger.DebateCreated(ctx, req.Username, req.Category))
	effects.record("badgeEvaluation", s.evaluateBadges(ctx, req.Username))
	effects.Log(s.log, "createDebate")

	return debate, effects, nil
}

// Get fetches a debate. Censored comments are filtered out unless
// showCensored is set. When a viewer is identified, their view counter is
// bumped as a best-effort effect.
func (s *DebateService) Get(ctx context.Context, id string, showCensored bool, viewer string) (*DebateView, Effects, error) {
	var effects Effects
	debate, err := s.debates.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, effects, ErrDebateNotFound
		}
		return nil, effects, err
	}

	// Best argument is picked before filtering, over the full sequence.
	best := debate.BestArgument()
	if !showCensored {
		debate.Comments = debate.ApprovedComments()
	}

	if viewer != "" {
		effects.record("viewCounter", s.ledger.ViewRecorded(ctx, viewer))
		effects.Log(s.log, "getDebate")
	}

	return &DebateView{Debate: debate, BestArgument: best}, effects, nil
}

// Vote moves username into the target vote set, clearing any previous
// vote first. Target None withdraws the vote; None with no standing vote
// is a no-op.
func (s *DebateService) Vote(ctx context.Context, id, username string, target models.VoteTarget) (*models.Debate, Effects, error) {
	var effects Effects
	if username == "" {
		return nil, effects, validationErrorf("username is required")
	}
	switch target {
	case models.VoteInFavor, models.VoteAgainst, models.VoteNone:
	default:
		return nil, effects, validationErrorf("invalid vote target %q", target)
	}

	debate, err := s.debates.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, effects, ErrDebateNotFound
		}
		return nil, effects, err
	}

	current := debate.UserVote(username)
	var deltas []store.SetDelta
	popularity := 0

	if current != models.VoteNone && current != target {
		switch current {
		case models.VoteInFavor:
			deltas = append(deltas, store.SetDelta{Field: store.FieldInFavor, Remove: []string{username}})
			popularity -= popularityInFavor
		case models.VoteAgainst:
			deltas = append(deltas, store.SetDelta{Field: store.FieldAgainst, Remove: []string{username}})
			popularity -= popularityAgainst
		}
	}
	if target != models.VoteNone && current != target {
		switch target {
		case models.VoteInFavor:
			deltas = append(deltas, store.SetDelta{Field: store.FieldInFavor, Add: []string{username}})
			popularity += popularityInFavor
		case models.VoteAgainst:
			deltas = append(deltas, store.SetDelta{Field: store.FieldAgainst, Add: []string{username}})
			popularity += popularityAgainst
		}
	}

	if len(deltas) > 0 {
		if err := s.debates.ApplyDeltas(ctx, id, deltas, popularity); err != nil {
			return nil, effects, fmt.Errorf("failed to apply vote: %w", err)
		}
	}

	updated, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, effects, err
	}

	effects.record("badgeEvaluation", s.evaluateBadges(ctx, username))
	effects.Log(s.log, "vote")

	return updated, effects, nil
}

// AddComment appends a comment to the debate. The author must hold a vote
// on the debate; their current stance is captured into the comment's
// position at posting time.
func (s *DebateService) AddComment(ctx context.Context, id string, req CommentRequest) (*models.Comment, Effects, error) {
	return s.addComment(ctx, id, "", req)
}

// AddReply appends a reply to an existing top-level comment. All comment
// preconditions apply.
func (s *DebateService) AddReply(ctx context.Context, id, parentID string, req CommentRequest) (*models.Comment, Effects, error) {
	if parentID == "" {
		return nil, nil, validationErrorf("parent comment id is required")
	}
	return s.addComment(ctx, id, parentID, req)
}

func (s *DebateService) addComment(ctx context.Context, id, parentID string, req CommentRequest) (*models.Comment, Effects, error) {
	var effects Effects
	if req.Username == "" || req.Text == "" {
		return nil, effects, validationErrorf("username and argument are required")
	}

	debate, err := s.debates.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, effects, ErrDebateNotFound
		}
		return nil, effects, err
	}

	if parentID != "" {
		parent := debate.FindComment(parentID)
		if parent == nil {
			return nil, effects, ErrCommentNotFound
		}
		if parent.ParentID != "" {
			return nil, effects, ErrReplyDepth
		}
	}

	position := debate.UserVote(req.Username)
	if position == models.VoteNone {
		return nil, effects, ErrMustVote
	}

	moderated := s.moderator.Moderate(ctx, req.Text)
	if moderated.Decision == DecisionReject {
		return nil, effects, &ModerationRejectedError{Reason: moderated.Reason, Categories: moderated.FlaggedCategories}
	}

	comment := models.Comment{
		ID:               uuid.NewString(),
		ParentID:         parentID,
		Username:         req.Username,
		Text:             req.Text,
		Position:         position == models.VoteInFavor,
		PeopleInFavor:    []string{},
		PeopleAgainst:    []string{},
		Refs:             req.Refs,
		Image:            req.Image,
		ModerationStatus: models.ModerationApproved,
		CreatedAt:        time.Now(),
	}
	if moderated.Decision == DecisionFlag {
		comment.ModerationStatus = models.ModerationCensored
		comment.ModerationReason = moderated.Reason
	}

	if err := s.debates.AppendComment(ctx, id, comment, 1); err != nil {
		return nil, effects, fmt.Errorf("failed to append comment: %w", err)
	}

	if moderated.Decision == DecisionFlag {
		effects.record("censorAudit", s.auditCensored(ctx, "COMMENT", comment.ID, id, req.Text, req.Username, moderated))
	}
	if parentID == "" {
		effects.record("notificationFanout", s.notifyCommentAdded(ctx, debate, req.Username))
		effects.record("activityLedger", s.ledger.CommentPosted(ctx, req.Username, debate.Category))
	} else {
		effects.record("activityLedger", s.ledger.ReplyPosted(ctx, req.Username, debate.Category))
	}
	effects.record("badgeEvaluation", s.evaluateBadges(ctx, req.Username))
	effects.Log(s.log, "addComment")

	return &comment, effects, nil
}

// notifyCommentAdded fans out one notification to the debate owner and
// each follower, with the recipient set deduplicated.
func (s *DebateService) notifyCommentAdded(ctx context.Context, debate *models.Debate, commenter string) error {
	recipients := make([]string, 0, len(debate.Followers)+1)
	seen := map[string]bool{}
	for _, r := range append([]string{debate.Owner}, debate.Followers...) {
		if !seen[r] {
			seen[r] = true
			recipients = append(recipients, r)
		}
	}

	var firstErr error
	for _, recipient := range recipients {
		message := fmt.Sprintf("%s commented on the debate %q", commenter, debate.Title)
		if recipient == debate.Owner {
			message = fmt.Sprintf("%s commented on your debate %q", commenter, debate.Title)
		}
		if err := s.notifier.Create(ctx, recipient, message, debate.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// React adds or removes a like/dislike on a comment. A user reacts in at
// most one direction per comment: adding a like withdraws any standing
// dislike and vice versa. Counters never go below zero, and ledger deltas
// only apply when the reactor sets actually changed.
func (s *DebateService) React(ctx context.Context, debateID, commentID, username, action, method string) (*models.Comment, Effects, error) {
	var effects Effects
	if username == "" {
		return nil, effects, validationErrorf("username is required")
	}
	if action != ReactionLike && action != ReactionDislike {
		return nil, effects, validationErrorf("invalid action %q", action)
	}
	if method != MethodAdd && method != MethodRemove {
		return nil, effects, validationErrorf("invalid method %q", method)
	}

	debate, err := s.debates.Get(ctx, debateID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, effects, ErrDebateNotFound
		}
		return nil, effects, err
	}
	comment := debate.FindComment(commentID)
	if comment == nil {
		return nil, effects, ErrCommentNotFound
	}

	changes := applyReaction(comment, username, action, method == MethodAdd)
	if len(changes) > 0 {
		if err := s.debates.UpdateComment(ctx, debateID, *comment); err != nil {
			return nil, effects, fmt.Errorf("failed to update comment: %w", err)
		}
		for _, ch := range changes {
			effects.record("activityLedger", s.ledger.ReactionChanged(ctx, username, ch.action, ch.added))
		}
		effects.record("badgeEvaluation", s.evaluateBadges(ctx, username))
		effects.Log(s.log, "react")
	}

	return comment, effects, nil
}

// reactionChange is one reactor-set membership change, reported to the
// ledger so user counters and score track the comment state exactly.
type reactionChange struct {
	action string
	added  bool
}

// applyReaction mutates the comment in place and returns the membership
// changes it made, including the withdrawal of the opposite reaction on a
// switch. An empty result means a full no-op.
func applyReaction(c *models.Comment, username, action string, add bool) []reactionChange {
	inSet := func(set []string) bool {
		for _, u := range set {
			if u == username {
				return true
			}
		}
		return false
	}
	without := func(set []string) []string {
		out := set[:0]
		for _, u := range set {
			if u != username {
				out = append(out, u)
			}
		}
		return out
	}
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}

	var changes []reactionChange
	switch {
	case action == ReactionLike && add:
		if inSet(c.PeopleInFavor) {
			return nil
		}
		if inSet(c.PeopleAgainst) {
			c.PeopleAgainst = without(c.PeopleAgainst)
			c.Dislikes = clamp(c.Dislikes - 1)
			changes = append(changes, reactionChange{action: ReactionDislike, added: false})
		}
		c.PeopleInFavor = append(c.PeopleInFavor, username)
		c.Likes++
		changes = append(changes, reactionChange{action: ReactionLike, added: true})
	case action == ReactionLike && !add:
		if !inSet(c.PeopleInFavor) {
			return nil
		}
		c.PeopleInFavor = without(c.PeopleInFavor)
		c.Likes = clamp(c.Likes - 1)
		changes = append(changes, reactionChange{action: ReactionLike, added: false})
	case action == ReactionDislike && add:
		if inSet(c.PeopleAgainst) {
			return nil
		}
		if inSet(c.PeopleInFavor) {
			c.PeopleInFavor = without(c.PeopleInFavor)
			c.Likes = clamp(c.Likes - 1)
			changes = append(changes, reactionChange{action: ReactionLike, added: false})
		}
		c.PeopleAgainst = append(c.PeopleAgainst, username)
		c.Dislikes++
		changes = append(changes, reactionChange{action: ReactionDislike, added: true})
	default: // dislike remove
		if !inSet(c.PeopleAgainst) {
			return nil
		}
		c.PeopleAgainst = without(c.PeopleAgainst)
		c.Dislikes = clamp(c.Dislikes - 1)
		changes = append(changes, reactionChange{action: ReactionDislike, added: false})
	}
	return changes
}

// Follow adds username to the debate's followers. Idempotent.
func (s *DebateService) Follow(ctx context.Context, id, username string) error {
	return s.updateFollowers(ctx, id, username, true)
}

// Unfollow removes username from the debate's followers. Idempotent.
func (s *DebateService) Unfollow(ctx context.Context, id, username string) error {
	return s.updateFollowers(ctx, id, username, false)
}

func (s *DebateService) updateFollowers(ctx context.Context, id, username string, follow bool) error {
	if username == "" {
		return validationErrorf("username is required")
	}
	delta := store.SetDelta{Field: store.FieldFollowers}
	if follow {
		delta.Add = []string{username}
	} else {
		delta.Remove = []string{username}
	}
	err := s.debates.ApplyDeltas(ctx, id, []store.SetDelta{delta}, 0)
	if err == store.ErrNotFound {
		return ErrDebateNotFound
	}
	return err
}

// UpdateDebateRequest patches top-level debate fields; nil means leave
// unchanged.
type UpdateDebateRequest struct {
	Title    *string   `json:"nameDebate"`
	Body     *string   `json:"argument"`
	Category *string   `json:"category"`
	Image    *string   `json:"image"`
	Refs     *[]string `json:"refs"`
}

// Update is the explicit edit path for a debate's own fields.
func (s *DebateService) Update(ctx context.Context, id string, req UpdateDebateRequest) (*models.Debate, error) {
	if _, err := s.debates.Get(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrDebateNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["nameDebate"] = *req.Title
	}
	if req.Body != nil {
		fields["argument"] = *req.Body
	}
	if req.Category != nil {
		if _, err := s.categories.Get(ctx, *req.Category); err != nil {
			if err == store.ErrNotFound {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		fields["category"] = *req.Category
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Refs != nil {
		fields["refs"] = *req.Refs
	}

	if len(fields) > 0 {
		if err := s.debates.SetFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.debates.Get(ctx, id)
}

// Delete removes the whole aggregate. Comments are never removed
// individually; deletion is whole-debate only.
func (s *DebateService) Delete(ctx context.Context, id string) error {
	err := s.debates.Delete(ctx, id)
	if err == store.ErrNotFound {
		return ErrDebateNotFound
	}
	return err
}

// ListByCategory returns the category's debates, optionally narrowed by a
// search term, sorted by the requested mode.
func (s *DebateService) ListByCategory(ctx context.Context, categoryID string, sortMode store.DebateSort, search string, showCensored bool) ([]*models.Debate, error) {
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	debates, err := s.debates.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	debates = filterDebates(debates, search, showCensored)

	switch sortMode {
	case store.SortPopular:
		sort.SliceStable(debates, func(i, j int) bool { return debates[i].Popularity > debates[j].Popularity })
	case store.SortAncient:
		sort.SliceStable(debates, func(i, j int) bool { return debates[i].CreatedAt.Before(debates[j].CreatedAt) })
	case store.SortRecent:
		sort.SliceStable(debates, func(i, j int) bool { return debates[i].CreatedAt.After(debates[j].CreatedAt) })
	default: // active
		sort.SliceStable(debates, func(i, j int) bool { return len(debates[i].Comments) > len(debates[j].Comments) })
	}
	return debates, nil
}

// Search finds debates whose title or body contains the term.
func (s *DebateService) Search(ctx context.Context, term string, showCensored bool) ([]*models.Debate, error) {
	if term == "" {
		return nil, validationErrorf("search term is required")
	}
	debates, err := s.debates.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterDebates(debates, term, showCensored), nil
}

// Popular returns the top five debates by popularity.
func (s *DebateService) Popular(ctx context.Context, showCensored bool) ([]*models.Debate, error) {
	return s.debates.TopByPopularity(ctx, 5, !showCensored)
}

func filterDebates(debates []*models.Debate, search string, showCensored bool) []*models.Debate {
	term := strings.ToLower(search)
	out := make([]*models.Debate, 0, len(debates))
	for _, d := range debates {
		if !showCensored && d.ModerationStatus != models.ModerationApproved {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(d.Title), term) &&
			!strings.Contains(strings.ToLower(d.Body), term) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (s *DebateService) auditCensored(ctx context.Context, contentType, contentID, debateID, text, username string, moderated ModerationResult) error {
	s.log.WithFields(logrus.Fields{
		"type":       contentType,
		"contentId":  contentID,
		"debateId":   debateID,
		"username":   username,
		"reason":     moderated.Reason,
		"categories": moderated.FlaggedCategories,
	}).Info("content censored")

	return s.censored.Insert(ctx, &models.CensoredContent{
		ID:         uuid.NewString(),
		Type:       contentType,
		ContentID:  contentID,
		DebateID:   debateID,
		Content:    text,
		Username:   username,
		Reason:     moderated.Reason,
		Categories: moderated.FlaggedCategories,
		CreatedAt:  time.Now(),
	})
}

func (s *DebateService) evaluateBadges(ctx context.Context, username string) error {
	_, err := s.badges.Evaluate(ctx, username)
	return err
}

package repository

import (
	"sync"

	"chatroom-backend/internal/models"
)

// ConversationRepo holds one append-only transcript per username in memory.
// Transcripts live until the process exits.
type ConversationRepo struct {
	mu          sync.Mutex
	transcripts map[string][]models.Turn
	maxTurns    int
}

// NewConversationRepo returns an empty store. maxTurns <= 0 keeps every turn;
// otherwise only the most recent maxTurns turns are retained per user.
func NewConversationRepo(maxTurns int) *ConversationRepo {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &ConversationRepo{
		transcripts: make(map[string][]models.Turn),
		maxTurns:    maxTurns,
	}
}

// Get returns a copy of the user's transcript, creating an empty one on first access.
func (r *ConversationRepo) Get(username string) []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns, ok := r.transcripts[username]
	if !ok {
		r.transcripts[username] = []models.Turn{}
		return []models.Turn{}
	}
	return cloneTurns(turns)
}

// Append adds turns to the end of the user's transcript in call order and
// returns a snapshot of the transcript as of this append. All turns of one
// call land contiguously even under concurrent appends for the same user.
func (r *ConversationRepo) Append(username string, turns ...models.Turn) []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()

	transcript := append(r.transcripts[username], turns...)
	if r.maxTurns > 0 && len(transcript) > r.maxTurns {
		transcript = cloneTurns(transcript[len(transcript)-r.maxTurns:])
	}
	r.transcripts[username] = transcript
	return cloneTurns(transcript)
}

// Len reports the number of stored turns for username without creating a transcript.
func (r *ConversationRepo) Len(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transcripts[username])
}

func cloneTurns(turns []models.Turn) []models.Turn {
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}

package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound         GameError = "room not found"
	ErrInvalidRoomCode      GameError = "invalid room code"
	ErrInvalidDisplayName   GameError = "display name must be 2 to 20 characters"
	ErrRoomFull             GameError = "room is full"
	ErrInvalidGameState     GameError = "invalid game state"
	ErrParticipantNotInRoom GameError = "participant not in room"
	ErrAlreadyInRoom        GameError = "participant already in room"
	ErrNotHost              GameError = "only the host can start the game"
	ErrNotEnoughPlayers     GameError = "need at least 3 players to start"
	ErrRoundNotActive       GameError = "round is not active"
	ErrParticipantDisabled  GameError = "participant is disabled"
	ErrAdversaryCannotBuzz  GameError = "the adversary cannot buzz"
	ErrAccusedCannotBuzz    GameError = "the accused cannot buzz"
	ErrVoteInProgress       GameError = "a vote is already in progress"
	ErrNoActiveVote         GameError = "no vote in progress"
	ErrNotEligibleToVote    GameError = "participant is not eligible to vote"
	ErrInvalidVoteTarget    GameError = "invalid vote target"
	ErrFixAlreadySubmitted  GameError = "a fix was already submitted this round"
	ErrNotAlly              GameError = "only allies can submit fixes"
	ErrNotAdversary         GameError = "only the adversary can update the defect"
	ErrEmptyMessage         GameError = "message cannot be empty"
	ErrMessageTooLong       GameError = "message is too long"
	ErrNilConfig            GameError = "config cannot be nil"
	ErrNilRoomRepo          GameError = "room repository cannot be nil"
	ErrNilDocuments         GameError = "document relay cannot be nil"
	ErrNilPublisher         GameError = "publisher cannot be nil"
	ErrNilMessaging         GameError = "messaging service cannot be nil"
	ErrNilCatalog           GameError = "sample catalog cannot be nil"
	ErrNilRandom            GameError = "random source cannot be nil"
	ErrNilClock             GameError = "clock cannot be nil"
	ErrNilUUIDGenerator     GameError = "UUID generator cannot be nil"
)

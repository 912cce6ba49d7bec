package assist

// Action names understood by the AI proxy endpoint. The dispatch payload and
// response shapes below are the two halves of the same wire contract, so the
// proxy decodes exactly what the wrappers encode.
const (
	ActionSummarize  = "summarizeDocument"
	ActionEstimate   = "estimateAssignmentTime"
	ActionStudyPlan  = "generateStudyPlan"
	ActionFlashcards = "generateFlashcards"
	ActionTutor      = "tutorQuestion"
	ActionChat       = "chatCompletion"
	ActionImage      = "imageGenerate"
	ActionSpeech     = "speechSynthesize"
)

// Assignment carries the fields the estimate and study plan prompts need.
type Assignment struct {
	ID          int64   `json:"id"`
	Course      string  `json:"course"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueAt       string  `json:"due_at,omitempty"`
	Points      float64 `json:"points,omitempty"`
}

// SummarizePayload is the payload for summarizeDocument.
type SummarizePayload struct {
	Text string `json:"text"`
}

// AssignmentPayload is the payload for estimateAssignmentTime and
// generateStudyPlan.
type AssignmentPayload struct {
	Assignment Assignment `json:"assignment"`
}

// FlashcardsPayload is the payload for generateFlashcards.
type FlashcardsPayload struct {
	Text string `json:"text"`
}

// TutorPayload is the payload for tutorQuestion.
type TutorPayload struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatPayload is the payload for chatCompletion.
type ChatPayload struct {
	Messages []ChatMessage `json:"messages"`
}

// ImagePayload is the payload for imageGenerate.
type ImagePayload struct {
	Prompt string `json:"prompt"`
}

// SpeechPayload is the payload for speechSynthesize.
type SpeechPayload struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// TextResult is the {text} response shared by summary, tutor and chat.
type TextResult struct {
	Text string `json:"text"`
}

// EstimateResult is the estimateAssignmentTime response.
type EstimateResult struct {
	Estimate string `json:"estimate"`
}

// StudyStep is one step of a generated study plan.
type StudyStep struct {
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
	Detail  string `json:"detail,omitempty"`
}

// StudyPlan is a structured multi-step study plan.
type StudyPlan struct {
	Steps []StudyStep `json:"steps"`
}

// StudyPlanResult is the generateStudyPlan response.
type StudyPlanResult struct {
	Plan StudyPlan `json:"plan"`
}

// Flashcard is one generated front/back card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardsResult is the generateFlashcards response.
type FlashcardsResult struct {
	Cards []Flashcard `json:"cards"`
}

// ImageResult is the imageGenerate response.
type ImageResult struct {
	URL string `json:"url"`
}

// SpeechResult is the speechSynthesize response; Audio is base64-encoded.
type SpeechResult struct {
	Audio string `json:"audio"`
}

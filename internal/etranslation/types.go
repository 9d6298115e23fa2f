package etranslation

// Submission is a single text-snippet translation request.
type Submission struct {
	SourceLanguage    string
	TargetLanguage    string
	Text              string
	RequesterCallback string
	ErrorCallback     string
}

// translationRequest is the JSON payload the provider accepts. Field names
// follow the provider contract, not this codebase's conventions.
type translationRequest struct {
	SourceLanguage    string            `json:"sourceLanguage"`
	TargetLanguages   []string          `json:"targetLanguages"`
	CallerInformation callerInformation `json:"callerInformation"`
	TextToTranslate   string            `json:"textToTranslate"`
	RequesterCallback string            `json:"requesterCallback"`
	ErrorCallback     string            `json:"errorCallback,omitempty"`
}

type callerInformation struct {
	Application string `json:"application"`
	Username    string `json:"username"`
}

package api

// AnalyzeRequest запрос на анализ записи
type AnalyzeRequest struct {
	AudioBase64 string `json:"audioBase64"`
	Language    string `json:"language"`
	AudioFormat string `json:"audioFormat,omitempty"` // по умолчанию mp3
}

// AnalyzeResponse ответ классификатора
type AnalyzeResponse struct {
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Language        string  `json:"language"`
	Explanation     string  `json:"explanation"`
}

// DefaultAudioFormat формат записи, если клиент его не указал
const DefaultAudioFormat = "mp3"

// Format возвращает формат записи или значение по умолчанию
func (r AnalyzeRequest) Format() string {
	if r.AudioFormat == "" {
		return DefaultAudioFormat
	}
	return r.AudioFormat
}

package llm

// WithTemperature sets the temperature
func WithTemperature(temperature float64) CallOption {
	return func(opts *CallOptions) {
		opts.Temperature = temperature
	}
}

// TextPart creates a single text message
func TextPart(role ChatMessageType, text string) MessageContent {
	return MessageContent{Role: role, Text: text}
}

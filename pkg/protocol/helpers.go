package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewTrackingMessage creates a tracking message from a landmark frame.
func NewTrackingMessage(data TrackingData) (*Message, error) {
	return NewMessage(TypeTracking, data)
}

// NewConversationMessage creates a candidate-turn message
func NewConversationMessage(text string) (*Message, error) {
	return NewMessage(TypeConversation, ConversationData{Text: text})
}

// NewControlMessage creates a session-control message
func NewControlMessage(action string) (*Message, error) {
	return NewMessage(TypeControl, ControlData{Action: action})
}

// NewMetricsUpdateMessage wraps per-frame metrics for broadcast. The
// metrics value is marshaled as-is so the session package stays the
// single source of the metrics schema.
func NewMetricsUpdateMessage(metrics interface{}) (*Message, error) {
	return NewMessage(TypeMetricsUpdate, metrics)
}

// NewAIResponseMessage creates an interviewer-reply message
func NewAIResponseMessage(text string) (*Message, error) {
	return NewMessage(TypeAIResponse, AIResponseData{Text: text})
}

// NewAnalyticsMessage wraps a session report card
func NewAnalyticsMessage(analytics interface{}) (*Message, error) {
	return NewMessage(TypeAnalytics, analytics)
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetTrackingData extracts tracking data from a message
func (m *Message) GetTrackingData() (*TrackingData, error) {
	var data TrackingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetConversationData extracts a candidate turn from a message
func (m *Message) GetConversationData() (*ConversationData, error) {
	var data ConversationData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetControlData extracts a session-control action from a message
func (m *Message) GetControlData() (*ControlData, error) {
	var data ControlData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

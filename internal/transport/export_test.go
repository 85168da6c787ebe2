package transport

// NewSESWithClient builds an SESTransport around a stub SES API for tests.
func NewSESWithClient(region string, api sesAPI) *SESTransport {
	return &SESTransport{Region: region, client: api}
}

// EncodeMessage exposes encodeMessage for tests.
func EncodeMessage(msg Message, nl string) ([]byte, error) {
	return encodeMessage(msg, nl)
}

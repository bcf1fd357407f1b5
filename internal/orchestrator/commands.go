package orchestrator

// Command is a side effect requested by the state machine. The caller executes
// it and reports the outcome back as an Event.
type Command interface {
	command()
}

// CreateAsset asks the video platform for a new asset and uploads the staged file.
type CreateAsset struct {
	Name    string
	FileKey string
	Size    int64
}

// UpdateAsset requests IPFS storage with NFT metadata. The default thumbnail is
// always suppressed.
type UpdateAsset struct {
	AssetID     string
	Name        string
	Description string
}

// StopPolling ends asset polling for the session.
type StopPolling struct{}

// SubmitMint prepares and writes the mint call.
type SubmitMint struct {
	Recipient   string
	MetadataURL string
}

// DiscardFile removes a staged file that is no longer referenced.
type DiscardFile struct {
	Key string
}

func (CreateAsset) command() {}
func (UpdateAsset) command() {}
func (StopPolling) command() {}
func (SubmitMint) command()  {}
func (DiscardFile) command() {}

// If you are AI: Status code strings are wire-format and compatibility
// critical — copied verbatim from the external interfaces.

package flashstream

const (
	StatusPlayReset         = "NetStream.Play.Reset"
	StatusPlayStart         = "NetStream.Play.Start"
	StatusPlayStop          = "NetStream.Play.Stop"
	StatusPlayFailed        = "NetStream.Play.Failed"
	StatusPlayStreamNotFound = "NetStream.Play.StreamNotFound"
	StatusPlayInsufficientBW = "NetStream.Play.InsufficientBW"
	StatusSeekInvalidTime   = "NetStream.Seek.InvalidTime"
	StatusPublishStart      = "NetStream.Publish.Start"
	StatusPublishBadName    = "NetStream.Publish.BadName"
	StatusUnpublishSuccess  = "NetStream.Unpublish.Success"
	StatusRecordStart       = "NetStream.Record.Start"
	StatusRecordStop        = "NetStream.Record.Stop"
	StatusRecordFailed      = "NetStream.Record.Failed"
	StatusRecordNoAccess    = "NetStream.Record.NoAccess"

	LevelStatus = "status"
	LevelError  = "error"
)

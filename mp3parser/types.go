package mp3parser

// ID3v2Header is an MP3 file's leading ID3v2 tag header, if present.
type ID3v2Header struct {
	Version [2]byte
	Flags   byte
	Size    int
}

// MP3FrameHeader is a single MPEG audio frame's 4-byte header, decoded.
type MP3FrameHeader struct {
	VersionID     int
	Layer         int
	ProtectionBit bool
	Bitrate       int
	SampleRate    int
	Padding       bool
	ChannelMode   int
	FrameLength   int
}

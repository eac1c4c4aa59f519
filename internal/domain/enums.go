package domain

// ContentTypePDF is the only upload type the engine accepts.
const ContentTypePDF = "application/pdf"

// ContentTypeZip is the media type of every successful response.
const ContentTypeZip = "application/zip"

// ArchiveFileName is the attachment name of the returned archive.
const ArchiveFileName = "output.zip"

// Output flag option keys. These are the only options coerced to booleans.
const (
	OptDumpMarkdown    = "f_dump_md"
	OptDrawLayoutBBox  = "f_draw_layout_bbox"
	OptDumpOrigPDF     = "f_dump_orig_pdf"
	OptDrawSpanBBox    = "f_draw_span_bbox"
	OptParseMethod     = "parse_method"
	OptTableEnable     = "table_enable"
	OptFormulaEnable   = "formula_enable"
	ParseMethodOCR     = "ocr"
	DefaultBaseName    = "document"
	DefaultParseMethod = "auto"
)

// FlagOptionKeys lists the output flags coerced to booleans on decode.
var FlagOptionKeys = []string{
	OptDumpMarkdown,
	OptDrawLayoutBBox,
	OptDumpOrigPDF,
	OptDrawSpanBBox,
}

// SwitchOptionKeys lists the engine feature switches. They are coerced like
// the output flags, except that null is kept and means "engine default".
var SwitchOptionKeys = []string{
	OptTableEnable,
	OptFormulaEnable,
}

// RequestStage tracks where a request is in its lifecycle.
type RequestStage string

const (
	StageReceived RequestStage = "received"
	StageDecoded  RequestStage = "decoded"
	StageParsed   RequestStage = "parsed"
	StagePackaged RequestStage = "packaged"
	StageEncoded  RequestStage = "encoded"
	StageFailed   RequestStage = "failed"
)

// ParseStatus is the final outcome stored in the request journal.
type ParseStatus string

const (
	ParseStatusSucceeded ParseStatus = "succeeded"
	ParseStatusFailed    ParseStatus = "failed"
)

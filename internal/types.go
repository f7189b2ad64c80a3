package internal

type ReportOrigin string

const (
	OriginUpload ReportOrigin = "upload"
	OriginIMAP   ReportOrigin = "imap"
)

// ArticleRecord is one article row recovered from an ANART report.
// Column names follow the export: reparto/categoria/fornitore are the
// department/category/supplier context carried across rows, consegnate is
// delivered, vendute is sold, giacenza is on-hand stock. Optional fields are
// nil when the source line did not carry them.
type ArticleRecord struct {
	Reparto   string
	Categoria string
	Fornitore string

	Code    string
	Product string

	Ordinato   int
	Consegnate int
	Vendute    int
	Giacenza   int

	PercVenduto     *float64 // as printed in the report
	PercVendutoCalc *float64 // vendute/consegnate*100, 2 decimals

	PrzAcq      *float64
	PrzVend     *float64
	ValoreNetto *float64

	TaccoMM *float64
}

// Image fetch failure reasons, attached per record and never propagated as
// errors. The closed set mirrors the missing-image report vocabulary.
const (
	MissNotFound       = "no_direct_xl_image_found"
	MissDownloadFailed = "download_failed_or_not_image"
	MissPlaceholder    = "placeholder_detected"
	MissDecodeFailed   = "image_decode_failed"
)

type ReportRow struct {
	ID         int
	Origin     string
	Filename   string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// FetchedReportFile is one report attachment pulled out of a mail message.
type FetchedReportFile struct {
	Origin     ReportOrigin
	Filename   string
	Sender     string
	ReceivedAt string
	Content    []byte
}

package startproject

// CreateSignals are the form signals posted by the Create button.
type CreateSignals struct {
	ProjectName string `json:"projectName"`
	FolderPath  string `json:"folderPath"`
}

// FolderSignals patches the form's folder field.
type FolderSignals struct {
	FolderPath string `json:"folderPath"`
}

// ToastKind distinguishes information from error notifications.
type ToastKind string

// Toast kinds.
const (
	ToastInfo  ToastKind = "info"
	ToastError ToastKind = "error"
)

// Toast is one user-visible notification.
type Toast struct {
	ID   int
	Kind ToastKind
	Text string
}

// DirEntry is a directory listed by the folder picker.
type DirEntry struct {
	Name string
	Path string
}

// PickerData is the view model of an open folder picker.
type PickerData struct {
	PanelID string
	Dir     string
	Parent  string
	Entries []DirEntry
	Err     error
}

// WorkspaceFolder is one row of the workspace list.
type WorkspaceFolder struct {
	Name string
	Path string
}

// PageData is the view model of the panel page.
type PageData struct {
	PanelID     string
	Title       string
	DatastarURL string
	IsDev       bool
	Workspace   []WorkspaceFolder
}

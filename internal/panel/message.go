package panel

// Command identifies a panel message.
type Command string

// Inbound commands (form -> controller).
const (
	CommandReady         Command = "ready"
	CommandChooseFolder  Command = "chooseFolder"
	CommandCreateProject Command = "createProject"
)

// Outbound commands (controller -> form).
const (
	CommandSelectedFolder Command = "selectedFolder"
)

// Message is the structured payload exchanged with the panel's form.
type Message struct {
	Command     Command `json:"command"`
	ProjectName string  `json:"projectName,omitempty"`
	FolderPath  string  `json:"folderPath,omitempty"`
}

// SelectedFolder builds the outbound message that updates the folder field.
func SelectedFolder(path string) Message {
	return Message{Command: CommandSelectedFolder, FolderPath: path}
}

// User-facing notification texts.
const (
	msgSelectFolder = "Please select a folder first."
	msgEmptyName    = "Project name cannot be empty."
)

package models

// Authority identifies this store in every content URI.
const Authority = "com.google.provider.NotePad"

// Scheme is the URI scheme accepted by the provider.
const Scheme = "content"

// ColumnID is the primary key column shared by both tables.
const ColumnID = "_id"

// ==================== NOTES ====================

const (
	NotesTable = "notes"

	NoteColumnTitle    = "title"
	NoteColumnNote     = "note"
	NoteColumnCreated  = "created"
	NoteColumnModified = "modified"

	NotesPath      = "notes"
	LiveFolderPath = "live_folders/notes"

	NotesContentType    = "vnd.android.cursor.dir/vnd.google.note"
	NoteItemContentType = "vnd.android.cursor.item/vnd.google.note"

	NotesDefaultSortOrder = "modified DESC"
)

// Live folder columns exposed for summary displays
const (
	LiveFolderColumnID   = "_id"
	LiveFolderColumnName = "name"
)

// NotesURI is the collection URI for notes.
const NotesURI = Scheme + "://" + Authority + "/" + NotesPath

// LiveFolderURI is the read-only notes summary view.
const LiveFolderURI = Scheme + "://" + Authority + "/" + LiveFolderPath

// ==================== TODOS ====================

const (
	TodosTable = "todos"

	TodoColumnTitle     = "title"
	TodoColumnContent   = "content"
	TodoColumnCompleted = "completed"
	TodoColumnCreated   = "created"
	TodoColumnDueDate   = "due_date"

	TodosPath = "todos"

	TodosContentType    = "vnd.android.cursor.dir/vnd.google.todo"
	TodoItemContentType = "vnd.android.cursor.item/vnd.google.todo"

	TodosDefaultSortOrder = "created DESC"
)

// TodosURI is the collection URI for todo items.
const TodosURI = Scheme + "://" + Authority + "/" + TodosPath

// MIMETypeTextPlain is the only stream type offered for a single note.
const MIMETypeTextPlain = "text/plain"

// DefaultUntitled is used when no placeholder title is configured.
const DefaultUntitled = "<Untitled>"

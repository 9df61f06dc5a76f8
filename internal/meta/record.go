package meta

// FileRecord is the normalized, exported unit of the inventory. It is created
// from exactly one raw item, never mutated afterwards, and owned by whoever
// receives the extraction result list.
type FileRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	FileType string `json:"file_type"`

	// Raw wire timestamps feed the forensic fingerprint; the formatted
	// variants feed display. Both are retained.
	CreationTime        string `json:"creation_date"`
	CreationTimeRaw     string `json:"creation_date_raw"`
	ModificationTime    string `json:"modification_date"`
	ModificationTimeRaw string `json:"modification_date_raw"`
	LastViewedTime      string `json:"last_viewed_date"`

	SizeBytes     string `json:"size_bytes"`
	SizeFormatted string `json:"size_formatted"`

	OwnerEmail        string `json:"owner_email"`
	OwnerName         string `json:"owner_name"`
	LastModifierEmail string `json:"last_modifier_email"`
	LastModifierName  string `json:"last_modifier_name"`
	SharingUserEmail  string `json:"sharing_user_email"`

	// Path is currently the bare name; full ancestor resolution is an opt-in
	// resolver (see PathResolver).
	Path string `json:"full_path"`

	ShareLink   string `json:"share_link"`
	Shared      bool   `json:"shared"`
	Trashed     bool   `json:"trashed"`
	Starred     bool   `json:"starred"`
	Description string `json:"description"`
	Checksum    string `json:"md5_checksum"`
	Version     string `json:"version"`

	Permissions     string   `json:"permissions"`
	PermissionCount int      `json:"permission_count"`
	ParentIDs       []string `json:"parents"`
}

package handler

import "net/http"

// Routes groups the drive handlers mounted on one mux
type Routes struct {
	Health   *HealthHandler
	Folders  *FolderHandler
	Files    *FileHandler
	Sharing  *SharingHandler
	Stars    *StarHandler
	Realtime http.Handler
}

// Register mounts every drive route (Go 1.22+ patterns)
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.Health.HealthCheck)
	if rt.Realtime != nil {
		mux.Handle("GET /ws", rt.Realtime)
	}

	// Folder routes
	mux.HandleFunc("POST /api/drive/folders", rt.Folders.CreateFolder)
	mux.HandleFunc("GET /api/drive/folders", rt.Folders.ListFolders)
	mux.HandleFunc("GET /api/drive/folders/{id}", rt.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/drive/folders/{id}", rt.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/drive/folders/{id}", rt.Folders.DeleteFolder)

	// Folder structure
	mux.HandleFunc("GET /api/drive/folders/{id}/subfolders", rt.Folders.ListSubfolders)
	mux.HandleFunc("POST /api/drive/folders/{id}/subfolders", rt.Folders.AddSubfolder)
	mux.HandleFunc("DELETE /api/drive/folders/{id}/subfolders/{childID}", rt.Folders.RemoveSubfolder)

	// File routes
	mux.HandleFunc("GET /api/drive/folders/{id}/files", rt.Files.ListFiles)
	mux.HandleFunc("POST /api/drive/folders/{id}/files", rt.Files.UploadFile)
	mux.HandleFunc("GET /api/drive/files/{id}", rt.Files.GetFile)
	mux.HandleFunc("GET /api/drive/files/{id}/content", rt.Files.DownloadFile)
	mux.HandleFunc("GET /api/drive/files/{id}/preview", rt.Files.PreviewFile)
	mux.HandleFunc("PATCH /api/drive/files/{id}", rt.Files.UpdateFile)
	mux.HandleFunc("DELETE /api/drive/files/{id}", rt.Files.DeleteFile)

	// Grant ledger
	mux.HandleFunc("GET /api/drive/folders/{id}/grants", rt.Sharing.ListFolderGrants)
	mux.HandleFunc("GET /api/drive/files/{id}/grants", rt.Sharing.ListFileGrants)
	mux.HandleFunc("POST /api/drive/shares", rt.Sharing.Share)
	mux.HandleFunc("PATCH /api/drive/grants/{id}", rt.Sharing.UpdateGrant)
	mux.HandleFunc("DELETE /api/drive/grants/{id}", rt.Sharing.Revoke)
	mux.HandleFunc("POST /api/drive/grantees", rt.Sharing.ListGrantees)
	mux.HandleFunc("GET /api/drive/shared/by-me", rt.Sharing.SharedByMe)
	mux.HandleFunc("GET /api/drive/shared/with-me", rt.Sharing.SharedWithMe)

	// Starring
	mux.HandleFunc("PUT /api/drive/{kind}/{id}/star", rt.Stars.SetStarred)
	mux.HandleFunc("GET /api/drive/starred", rt.Stars.ListStarred)
}

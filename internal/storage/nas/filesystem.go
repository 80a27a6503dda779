package nas

import (
	"ImageRecognitionSkill/internal/config"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedImageExtensions 與 Vision API 支援的格式一致
var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true, ".tif": true, ".tiff": true, ".ico": true,
}

// FileSystemStorage 從本地檔案系統 (NAS) 讀取待標註的影像。
// 目錄結構：basePath/<fileID>/<影像檔>，或 basePath/<actorID>/<fileID>/<影像檔>
type FileSystemStorage struct {
	basePath string
}

// NewFileSystemStorage 建立一個 FileSystemStorage 實例，根目錄不存在時會自動建立
func NewFileSystemStorage(nasCfg config.NASConfig) (*FileSystemStorage, error) {
	if nasCfg.ImagePath == "" {
		return nil, fmt.Errorf("NAS 設定中的 imagePath 不得為空")
	}
	absBasePath, err := filepath.Abs(nasCfg.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("無法取得 NAS imagePath 的絕對路徑 '%s': %w", nasCfg.ImagePath, err)
	}
	if _, err := os.Stat(absBasePath); os.IsNotExist(err) {
		log.Printf("資訊：NAS 根目錄 '%s' 不存在，正在嘗試建立...", absBasePath)
		if err := os.MkdirAll(absBasePath, 0o755); err != nil {
			return nil, fmt.Errorf("無法建立 NAS 根目錄 '%s': %w", absBasePath, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("檢查 NAS 根目錄 '%s' 時發生錯誤: %w", absBasePath, err)
	}
	log.Printf("資訊：FileSystemStorage 初始化成功，影像根路徑設定為: %s", absBasePath)
	return &FileSystemStorage{basePath: absBasePath}, nil
}

// safeSegment 拒絕可能造成路徑遍歷的 ID
func safeSegment(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s 不得為空", name)
	}
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
		return fmt.Errorf("%s 含有不合法的字元: %q", name, value)
	}
	return nil
}

// GetImageAbsolutePath 找出檔案目錄中第一個（依檔名排序）支援的影像
func (fs *FileSystemStorage) GetImageAbsolutePath(fileID string, actorID string) (string, error) {
	if err := safeSegment("fileID", fileID); err != nil {
		return "", err
	}
	dir := filepath.Join(fs.basePath, fileID)
	if actorID != "" {
		if err := safeSegment("actorID", actorID); err != nil {
			return "", err
		}
		actorDir := filepath.Join(fs.basePath, actorID, fileID)
		if info, err := os.Stat(actorDir); err == nil && info.IsDir() {
			dir = actorDir
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("無法讀取檔案 %s 的目錄 '%s': %w", fileID, dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("檔案 %s 的目錄 '%s' 中找不到支援的影像", fileID, dir)
}

// ReadImage 讀取檔案內容；actorID 只用來決定目錄，不涉及任何憑證
func (fs *FileSystemStorage) ReadImage(fileID string, actorID string) ([]byte, error) {
	absolutePath, err := fs.GetImageAbsolutePath(fileID, actorID)
	if err != nil {
		return nil, err
	}
	log.Printf("資訊：正在從 '%s' 讀取影像...", absolutePath)
	data, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, fmt.Errorf("無法讀取影像檔案 '%s': %w", absolutePath, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("影像檔案 '%s' 為空", absolutePath)
	}
	return data, nil
}

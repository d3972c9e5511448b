package suggest

// DefaultAliases maps normalized column titles to alternative titles that
// the reference sheets commonly use for the same data.
var DefaultAliases = map[string][]string{
	// customers
	"khach hang": {"kh", "khachhang", "ten khach hang", "customer", "nguoi nhan", "nguoinhan"},
	"khachhang":  {"khach hang"},

	// staff
	"ten nhan vien": {"nhan vien", "ten nv", "ho ten", "ho va ten", "nguoi cham cong", "nhan-su", "nhansu"},
	"nhan vien":     {"ten nhan vien", "ten nv", "ho ten", "ho va ten", "nhanvien"},
	"ten tai xe":    {"ten nhan vien", "nhan vien", "ten nv", "ho ten", "lai xe", "tai xe"},
	"tai xe":        {"ten nhan vien", "nhan vien", "ten nv", "ho ten", "lai xe"},
	"ten phu xe":    {"ten nhan vien", "nhan vien", "ten nv", "ho ten", "phu xe"},
	"phu xe":        {"ten nhan vien", "nhan vien", "ten nv", "ho ten"},

	// vehicles
	"so xe":       {"bien so", "bien so xe", "bsx", "xe", "bien so x"},
	"bien so":     {"so xe", "bien so xe", "bsx"},
	"bien so xe":  {"so xe", "bien so", "bsx"},
	"phuong tien": {"phuongtien", "xe", "vehicle"},

	// shift metadata
	"chuc vu": {"vai tro", "position", "role", "cv"},
	"ca":      {"ca lam", "ca lam viec", "shift"},
	"gio vao": {"checkin", "gio bat dau", "bat dau", "in", "gio vao ca"},
	"gio ra":  {"checkout", "gio ket thuc", "ket thuc", "out", "gio ra ca"},
	"vi tri":  {"gps", "toa do", "toado", "lat lon", "latlong", "location", "vi tri gps"},
	"ghi chu": {"note", "ghichu", "ghi chu them", "ly do", "ghi chu/ly do"},
}

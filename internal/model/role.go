package model

// Role tags an account collection. User and admin identities never share a table.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type roleSpec struct {
	table      string
	loginPath  string
	signupPath string
	homePath   string
	homePage   string
	marker     string
}

var roleSpecs = map[Role]roleSpec{
	RoleUser: {
		table:      "users",
		loginPath:  "/login",
		signupPath: "/signup",
		homePath:   "/home",
		homePage:   "home.html",
		marker:     "username",
	},
	RoleAdmin: {
		table:      "admins",
		loginPath:  "/adminlogin",
		signupPath: "/adminsignup",
		homePath:   "/adminhome",
		homePage:   "admin_dashboard.html",
		marker:     "adminUsername",
	},
}

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleSpecs[r]
	return ok
}

// Table is the account table backing the role.
func (r Role) Table() string { return roleSpecs[r].table }

// LoginPath is where unauthenticated requests for the role are sent.
func (r Role) LoginPath() string { return roleSpecs[r].loginPath }

// SignupPath is the role's signup endpoint.
func (r Role) SignupPath() string { return roleSpecs[r].signupPath }

// HomePath is where a successful login lands.
func (r Role) HomePath() string { return roleSpecs[r].homePath }

// HomePage is the static page served at HomePath.
func (r Role) HomePage() string { return roleSpecs[r].homePage }

// Marker is the session field whose presence means "authenticated as r".
func (r Role) Marker() string { return roleSpecs[r].marker }

func (r Role) String() string { return string(r) }

package user

type CreateUserInput struct {
	Username string  `form:"username" json:"username" binding:"required,min=3,max=100" example:"mg01@obra.com.br"`
	Password string  `form:"password" json:"password" binding:"required,min=6" example:"password123"`
	Email    *string `form:"email" json:"email" binding:"omitempty,email" example:"mg01@obra.com.br"`
	FullName *string `form:"full_name" json:"full_name" example:"Maria Gomes"`
	Role     *string `form:"role" json:"role" binding:"omitempty,oneof=admin supervisor technician" example:"technician"`
}

type LoginInput struct {
	Username string `form:"username" json:"username" binding:"required" example:"mg01@obra.com.br"`
	Password string `form:"password" json:"password" binding:"required" example:"password123"`
}

type UserDTO struct {
	UID      uint    `json:"u_id" example:"12"`
	Username string  `json:"username" example:"mg01@obra.com.br"`
	Email    *string `json:"email" example:"mg01@obra.com.br"`
	FullName *string `json:"full_name" example:"Maria Gomes"`
	Role     Role    `json:"role" example:"technician"`
}

func (u User) DTO() UserDTO {
	return UserDTO{UID: u.UID, Username: u.Username, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

type UpdateUserInput struct {
	Password    *string `json:"password,omitempty" binding:"omitempty,min=6"`
	OldPassword *string `json:"old_password,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	FullName    *string `json:"full_name,omitempty"`
	Role        *Role   `json:"role,omitempty" binding:"omitempty,oneof=admin supervisor technician"`
}
